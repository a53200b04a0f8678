package api

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gdrive-backup/internal/model"
)

// RootID is the parent handle of the Drive root folder. Destination paths
// resolve against it.
const RootID = "root"

// ErrNotFound is returned when a lookup matches nothing on the remote service.
var ErrNotFound = errors.New("remote item not found")

// RemoteError wraps a failed remote operation with the operation name and
// the path or item it was acting on.
type RemoteError struct {
	Op   string
	Path string
	Err  error
}

func (e *RemoteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Remote defines the operations the backup needs from the cloud storage
// service. The service does not guarantee name uniqueness among siblings,
// so callers must check existence before creating to avoid duplicates.
type Remote interface {
	// FindFolder returns the folder named name directly under parentID.
	// The error wraps ErrNotFound when no such folder exists.
	FindFolder(ctx context.Context, parentID, name string) (model.Item, error)

	// FindChildren returns every child of parentID named name, files and
	// folders alike.
	FindChildren(ctx context.Context, parentID, name string) ([]model.Item, error)

	// ListChildren returns every child of folderID. No ordering is
	// guaranteed.
	ListChildren(ctx context.Context, folderID string) ([]model.Item, error)

	// CreateFolder creates a folder named name under parentID.
	CreateFolder(ctx context.Context, parentID, name string) (model.Item, error)

	// Delete removes an item. Deleting a folder removes its contents too.
	Delete(ctx context.Context, itemID string) error

	// Upload streams r as a new file named name under parentID.
	Upload(ctx context.Context, parentID, name string, r io.Reader, size int64) (model.Item, error)
}
