package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gdrive-backup/internal/api"
	"gdrive-backup/internal/logger"
	"gdrive-backup/internal/model"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Client implements api.Remote against the Google Drive v3 API.
type Client struct {
	service *drive.Service
}

// NewClient builds a Drive client from an authenticated token source. The
// token is validated once up front so authentication problems surface
// before any mapping is processed.
func NewClient(ctx context.Context, ts oauth2.TokenSource) (*Client, error) {
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	service, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &Client{service: service}, nil
}

// FindFolder returns the folder named name directly under parentID.
func (c *Client) FindFolder(ctx context.Context, parentID, name string) (model.Item, error) {
	query := fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false",
		escapeQuery(parentID), escapeQuery(name), folderMimeType)

	list, err := c.service.Files.List().Q(query).
		Fields("files(id, name, mimeType, parents)").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return model.Item{}, &api.RemoteError{Op: "find folder", Path: name, Err: err}
	}
	if len(list.Files) == 0 {
		return model.Item{}, &api.RemoteError{Op: "find folder", Path: name, Err: api.ErrNotFound}
	}
	return toItem(list.Files[0]), nil
}

// FindChildren returns every child of parentID named name.
func (c *Client) FindChildren(ctx context.Context, parentID, name string) ([]model.Item, error) {
	query := fmt.Sprintf("'%s' in parents and name='%s' and trashed=false",
		escapeQuery(parentID), escapeQuery(name))
	return c.list(ctx, query, name)
}

// ListChildren returns every child of folderID.
func (c *Client) ListChildren(ctx context.Context, folderID string) ([]model.Item, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", escapeQuery(folderID))
	return c.list(ctx, query, folderID)
}

func (c *Client) list(ctx context.Context, query, path string) ([]model.Item, error) {
	var items []model.Item
	pageToken := ""

	for {
		call := c.service.Files.List().Q(query).
			Fields("nextPageToken, files(id, name, mimeType, parents)").
			PageSize(1000).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Do()
		if err != nil {
			return nil, &api.RemoteError{Op: "list", Path: path, Err: err}
		}

		for _, f := range list.Files {
			items = append(items, toItem(f))
		}

		if list.NextPageToken == "" {
			break
		}
		pageToken = list.NextPageToken
	}

	return items, nil
}

// CreateFolder creates a folder named name under parentID.
func (c *Client) CreateFolder(ctx context.Context, parentID, name string) (model.Item, error) {
	folder := &drive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{parentID},
	}

	created, err := c.service.Files.Create(folder).
		Fields("id, name, mimeType, parents").
		Context(ctx).Do()
	if err != nil {
		return model.Item{}, &api.RemoteError{Op: "create folder", Path: name, Err: err}
	}
	return toItem(created), nil
}

// Delete permanently removes an item. When the account lacks delete
// permission (403), the item is trashed instead.
func (c *Client) Delete(ctx context.Context, itemID string) error {
	err := c.service.Files.Delete(itemID).Context(ctx).Do()
	if err == nil {
		return nil
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code == 403 {
		logger.WarningTagged([]string{"Drive"}, "Insufficient permissions to delete item %s, attempting to trash it instead", itemID)
		if _, updateErr := c.service.Files.Update(itemID, &drive.File{Trashed: true}).Context(ctx).Do(); updateErr != nil {
			return &api.RemoteError{Op: "trash", Path: itemID, Err: updateErr}
		}
		return nil
	}

	return &api.RemoteError{Op: "delete", Path: itemID, Err: err}
}

// Upload streams r as a new file named name under parentID.
func (c *Client) Upload(ctx context.Context, parentID, name string, r io.Reader, size int64) (model.Item, error) {
	file := &drive.File{
		Name:    name,
		Parents: []string{parentID},
	}

	created, err := c.service.Files.Create(file).
		Media(r).
		Fields("id, name, mimeType, parents").
		Context(ctx).Do()
	if err != nil {
		return model.Item{}, &api.RemoteError{Op: "upload", Path: name, Err: err}
	}
	return toItem(created), nil
}

// escapeQuery escapes backslashes and single quotes for Drive query strings.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func toItem(f *drive.File) model.Item {
	kind := model.KindFile
	if f.MimeType == folderMimeType {
		kind = model.KindFolder
	}
	item := model.Item{ID: f.Id, Name: f.Name, Kind: kind}
	if len(f.Parents) > 0 {
		item.ParentID = f.Parents[0]
	}
	return item
}
