package mirror

import (
	"context"

	"gdrive-backup/internal/api"
	"gdrive-backup/internal/logger"
	"gdrive-backup/internal/model"
)

// Deleter clears remote folders before a fresh upload. A failure on one
// item is logged and counted, never fatal: the remaining siblings are
// still attempted. In dry run mode nothing is deleted.
type Deleter struct {
	Remote api.Remote
	DryRun bool

	Deleted int
	Errors  int
}

// ClearFolder removes every child of folderID, depth-first so per-item
// failures surface with the most specific path. path is the remote path
// used for logging.
func (d *Deleter) ClearFolder(ctx context.Context, folderID, path string) error {
	children, err := d.Remote.ListChildren(ctx, folderID)
	if err != nil {
		return err
	}

	for _, child := range children {
		childPath := path + "/" + child.Name

		if child.IsFolder() {
			// Recurse first so the folder is empty by the time it is deleted.
			if err := d.ClearFolder(ctx, child.ID, childPath); err != nil {
				logger.Error("Failed to list folder %s: %v", childPath, err)
				d.Errors++
				continue
			}
		}

		d.delete(ctx, child, childPath)
	}

	return nil
}

// RemoveNamed deletes every child of parentID whose name matches name.
// Used before re-uploading a single file so stale same-named copies do not
// accumulate next to it.
func (d *Deleter) RemoveNamed(ctx context.Context, parentID, name, path string) error {
	matches, err := d.Remote.FindChildren(ctx, parentID, name)
	if err != nil {
		return err
	}

	for _, item := range matches {
		d.delete(ctx, item, path+"/"+item.Name)
	}
	return nil
}

func (d *Deleter) delete(ctx context.Context, item model.Item, path string) {
	if d.DryRun {
		logger.DryRunTagged([]string{"Drive"}, "Would delete %s", path)
		return
	}

	if err := d.Remote.Delete(ctx, item.ID); err != nil {
		logger.Error("Failed to delete %s: %v", path, err)
		d.Errors++
		return
	}

	logger.InfoTagged([]string{"Drive"}, "Deleted: %s", path)
	d.Deleted++
}
