package mirror

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"gdrive-backup/internal/api"
	"gdrive-backup/internal/logger"
	"gdrive-backup/internal/model"
)

// Walker mirrors a local directory tree into a remote folder. The walk is
// depth-first and pre-order: a folder is ensured remotely before its
// children are processed, so every upload has a valid parent to land in.
// Item-level failures are logged and counted; the walk continues with the
// remaining siblings. In dry run mode nothing is written.
type Walker struct {
	Remote api.Remote
	DryRun bool

	FilesUploaded  int
	FoldersCreated int
	Skipped        int
	Errors         int
}

// WalkDir mirrors the local directory dir into the remote folder parentID.
// relPath is the remote-side path used for logging. Empty directories are
// mirrored too. Symbolic links and other non-regular files are skipped
// with a warning.
func (w *Walker) WalkDir(ctx context.Context, dir, parentID, relPath string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		localPath := filepath.Join(dir, entry.Name())
		remotePath := relPath + "/" + entry.Name()

		switch {
		case entry.IsDir():
			folder, err := w.ensureFolder(ctx, parentID, entry.Name(), remotePath)
			if err != nil {
				logger.Error("Failed to create folder %s: %v", remotePath, err)
				w.Errors++
				continue
			}
			if err := w.WalkDir(ctx, localPath, folder.ID, remotePath); err != nil {
				if ctx.Err() != nil {
					return err
				}
				logger.Error("Failed to read directory %s: %v", localPath, err)
				w.Errors++
			}
		case entry.Type().IsRegular():
			w.UploadFile(ctx, localPath, parentID, entry.Name(), remotePath)
		default:
			logger.Warning("Skipping %s: not a regular file", localPath)
			w.Skipped++
		}
	}

	return nil
}

// UploadFile uploads one local file under the remote folder parentID.
// Failures are logged and counted, not returned: a single bad file must
// not stop the rest of the mapping.
func (w *Walker) UploadFile(ctx context.Context, localPath, parentID, name, remotePath string) {
	if w.DryRun {
		logger.DryRunTagged([]string{"Drive"}, "Would upload %s", remotePath)
		return
	}

	f, err := os.Open(localPath)
	if err != nil {
		logger.Error("Failed to open %s: %v", localPath, err)
		w.Errors++
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		logger.Error("Failed to stat %s: %v", localPath, err)
		w.Errors++
		return
	}

	if _, err := w.Remote.Upload(ctx, parentID, name, f, info.Size()); err != nil {
		logger.Error("Failed to upload %s: %v", remotePath, err)
		w.Errors++
		return
	}

	logger.InfoTagged([]string{"Drive"}, "Uploaded: %s", remotePath)
	w.FilesUploaded++
}

// ensureFolder finds or creates the remote folder named name under
// parentID. An empty parentID only occurs in dry run, for folders whose
// parent was itself never created; the lookup is skipped then.
func (w *Walker) ensureFolder(ctx context.Context, parentID, name, remotePath string) (model.Item, error) {
	if parentID != "" {
		folder, err := w.Remote.FindFolder(ctx, parentID, name)
		if err == nil {
			return folder, nil
		}
		if !errors.Is(err, api.ErrNotFound) {
			return model.Item{}, err
		}
	}

	if w.DryRun {
		logger.DryRunTagged([]string{"Drive"}, "Would create folder %s", remotePath)
		return model.Item{Name: name, Kind: model.KindFolder}, nil
	}

	folder, err := w.Remote.CreateFolder(ctx, parentID, name)
	if err != nil {
		return model.Item{}, err
	}

	logger.InfoTagged([]string{"Drive"}, "Created folder: %s", remotePath)
	w.FoldersCreated++
	return folder, nil
}
