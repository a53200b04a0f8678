package model

import "time"

// ItemKind distinguishes files from folders on the remote service.
type ItemKind string

const (
	KindFile   ItemKind = "file"
	KindFolder ItemKind = "folder"
)

// Item represents a file or folder stored in Google Drive.
type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Kind     ItemKind `json:"kind"`
	ParentID string   `json:"parent_id"`
}

// IsFolder reports whether the item is a folder.
func (i Item) IsFolder() bool {
	return i.Kind == KindFolder
}

// Mapping represents one configured backup pair: a local source path and
// the remote destination folder it is mirrored into.
type Mapping struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// MappingState tracks a mapping through a run. A mapping moves through
// Pending, Resolving, Deleting and Uploading before reaching one of the
// three terminal states.
type MappingState string

const (
	StatePending   MappingState = "Pending"
	StateResolving MappingState = "Resolving"
	StateDeleting  MappingState = "Deleting"
	StateUploading MappingState = "Uploading"
	StateSucceeded MappingState = "Succeeded"
	StateDegraded  MappingState = "Degraded"
	StateFailed    MappingState = "Failed"
)

// Terminal reports whether the state is a final outcome.
func (s MappingState) Terminal() bool {
	return s == StateSucceeded || s == StateDegraded || s == StateFailed
}

// MappingResult records the outcome of processing one mapping.
type MappingResult struct {
	Mapping        Mapping
	State          MappingState
	FilesUploaded  int
	FoldersCreated int
	ItemsDeleted   int
	ItemsSkipped   int
	ItemErrors     int
	Err            error
	Started        time.Time
	Finished       time.Time
}

// Duration returns how long the mapping took to process.
func (r MappingResult) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// RunSummary aggregates the per-mapping results of one backup run.
type RunSummary struct {
	Started  time.Time
	Finished time.Time
	Results  []MappingResult
}

// Count returns how many mappings ended in the given state.
func (s *RunSummary) Count(state MappingState) int {
	n := 0
	for _, r := range s.Results {
		if r.State == state {
			n++
		}
	}
	return n
}

// Ok reports whether the run should exit zero. A failed mapping always
// makes the run unsuccessful; degraded mappings only do when strict is set.
func (s *RunSummary) Ok(strict bool) bool {
	if s.Count(StateFailed) > 0 {
		return false
	}
	if strict && s.Count(StateDegraded) > 0 {
		return false
	}
	return true
}
