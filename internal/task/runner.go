package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gdrive-backup/internal/api"
	"gdrive-backup/internal/journal"
	"gdrive-backup/internal/logger"
	"gdrive-backup/internal/mirror"
	"gdrive-backup/internal/model"
)

// Runner handles backup orchestration. Mappings are processed strictly in
// configuration order, one at a time.
type Runner struct {
	remote   api.Remote
	journal  *journal.Journal
	safeMode bool
}

// NewRunner creates a new backup runner. The journal may be nil, in which
// case no history is recorded.
func NewRunner(remote api.Remote, jnl *journal.Journal, safeMode bool) *Runner {
	return &Runner{
		remote:   remote,
		journal:  jnl,
		safeMode: safeMode,
	}
}

// Run processes every mapping and returns the collected outcomes. A
// mapping that fails never stops the ones after it.
func (r *Runner) Run(ctx context.Context, mappings []model.Mapping) *model.RunSummary {
	if r.safeMode {
		logger.DryRun("Safe mode enabled, no remote changes will be made")
	}
	logger.Info("Starting backup of %d mappings...", len(mappings))

	summary := &model.RunSummary{Started: time.Now()}

	for _, m := range mappings {
		result := r.runMapping(ctx, m)
		summary.Results = append(summary.Results, result)

		switch result.State {
		case model.StateSucceeded:
			logger.InfoTagged([]string{m.Destination}, "Done: %d files uploaded, %d folders created, %d items deleted (%.1fs)",
				result.FilesUploaded, result.FoldersCreated, result.ItemsDeleted, result.Duration().Seconds())
		case model.StateDegraded:
			logger.WarningTagged([]string{m.Destination}, "Done with %d item errors: %d files uploaded, %d items deleted",
				result.ItemErrors, result.FilesUploaded, result.ItemsDeleted)
		case model.StateFailed:
			logger.ErrorTagged([]string{m.Destination}, "Mapping failed: %v", result.Err)
		}
	}

	summary.Finished = time.Now()
	logger.Info("Backup run complete: %d succeeded, %d degraded, %d failed",
		summary.Count(model.StateSucceeded),
		summary.Count(model.StateDegraded),
		summary.Count(model.StateFailed))

	if r.journal != nil {
		if _, err := r.journal.RecordRun(summary, r.safeMode); err != nil {
			logger.Warning("Failed to record run history: %v", err)
		}
	}

	return summary
}

// runMapping moves one mapping through resolving, deleting and uploading.
// Per-item problems during deletion or upload degrade the outcome; anything
// that prevents those phases from running at all fails it.
func (r *Runner) runMapping(ctx context.Context, m model.Mapping) (result model.MappingResult) {
	result = model.MappingResult{Mapping: m, State: model.StatePending, Started: time.Now()}
	defer func() { result.Finished = time.Now() }()

	tags := []string{m.Destination}

	if err := ctx.Err(); err != nil {
		return fail(result, err)
	}

	logger.InfoTagged(tags, "Backing up %s", m.Source)

	result.State = model.StateResolving
	info, err := os.Stat(m.Source)
	if err != nil {
		return fail(result, fmt.Errorf("source is not accessible: %w", err))
	}

	destFolder, existed, err := mirror.EnsureFolderPath(ctx, r.remote, m.Destination, r.safeMode)
	if err != nil {
		return fail(result, fmt.Errorf("failed to resolve destination %q: %w", m.Destination, err))
	}
	destPath := strings.Trim(m.Destination, "/")

	result.State = model.StateDeleting
	deleter := &mirror.Deleter{Remote: r.remote, DryRun: r.safeMode}
	if !existed {
		logger.InfoTagged(tags, "Destination folder is new, nothing to clear")
	} else if info.IsDir() {
		if err := deleter.ClearFolder(ctx, destFolder.ID, destPath); err != nil {
			return fail(result, fmt.Errorf("failed to list destination contents: %w", err))
		}
	} else {
		name := filepath.Base(m.Source)
		if err := deleter.RemoveNamed(ctx, destFolder.ID, name, destPath+"/"+name); err != nil {
			return fail(result, fmt.Errorf("failed to list destination contents: %w", err))
		}
	}
	result.ItemsDeleted = deleter.Deleted
	result.ItemErrors += deleter.Errors

	result.State = model.StateUploading
	walker := &mirror.Walker{Remote: r.remote, DryRun: r.safeMode}

	var walkErr error
	if info.IsDir() {
		walkErr = walker.WalkDir(ctx, m.Source, destFolder.ID, destPath)
	} else {
		name := filepath.Base(m.Source)
		walker.UploadFile(ctx, m.Source, destFolder.ID, name, destPath+"/"+name)
	}

	result.FilesUploaded = walker.FilesUploaded
	result.FoldersCreated = walker.FoldersCreated
	result.ItemsSkipped = walker.Skipped
	result.ItemErrors += walker.Errors

	if walkErr != nil {
		return fail(result, fmt.Errorf("upload did not finish: %w", walkErr))
	}

	if result.ItemErrors > 0 {
		result.State = model.StateDegraded
	} else {
		result.State = model.StateSucceeded
	}
	return result
}

func fail(result model.MappingResult, err error) model.MappingResult {
	result.State = model.StateFailed
	result.Err = err
	return result
}
