package mirror

import (
	"context"
	"errors"
	"strings"

	"gdrive-backup/internal/api"
	"gdrive-backup/internal/logger"
	"gdrive-backup/internal/model"
)

// EnsureFolderPath resolves a slash-separated destination path like
// "Backups/Laptop/home" against the Drive root, creating any missing
// segments. It reports whether the leaf folder already existed before this
// call, which tells the caller whether there is anything to delete. In dry
// run mode missing segments are only announced; the returned leaf then has
// an empty ID.
func EnsureFolderPath(ctx context.Context, remote api.Remote, path string, dryRun bool) (model.Item, bool, error) {
	parent := model.Item{ID: api.RootID, Name: "/", Kind: model.KindFolder}
	existed := true

	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			continue
		}

		// Under a folder that is itself only planned there is nothing to
		// look up.
		if parent.ID == "" {
			logger.DryRunTagged([]string{"Drive"}, "Would create folder: %s", segment)
			parent = model.Item{Name: segment, Kind: model.KindFolder}
			continue
		}

		folder, err := remote.FindFolder(ctx, parent.ID, segment)
		if errors.Is(err, api.ErrNotFound) {
			existed = false
			if dryRun {
				logger.DryRunTagged([]string{"Drive"}, "Would create folder: %s", segment)
				parent = model.Item{Name: segment, Kind: model.KindFolder}
				continue
			}
			folder, err = remote.CreateFolder(ctx, parent.ID, segment)
			if err != nil {
				return model.Item{}, false, err
			}
			logger.InfoTagged([]string{"Drive"}, "Created folder: %s", segment)
		} else if err != nil {
			return model.Item{}, false, err
		}

		parent = folder
	}

	return parent, existed, nil
}
