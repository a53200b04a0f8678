// Package apitest provides an in-memory api.Remote for tests.
package apitest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"gdrive-backup/internal/api"
	"gdrive-backup/internal/model"
)

type node struct {
	id     string
	name   string
	parent string
	kind   model.ItemKind
	data   []byte
}

// FakeRemote implements api.Remote against an in-memory tree. Every write
// is appended to Ops as "mkdir <path>", "upload <path>" or "delete <path>"
// so tests can assert ordering. Deletes and uploads can be made to fail for
// specific paths via FailDelete and FailUpload.
type FakeRemote struct {
	Ops        []string
	FailDelete map[string]bool
	FailUpload map[string]bool

	nodes  map[string]*node
	nextID int
}

// NewFakeRemote returns an empty fake with only the root folder.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		FailDelete: make(map[string]bool),
		FailUpload: make(map[string]bool),
		nodes:      make(map[string]*node),
	}
}

// AddFolder seeds a folder under parentID and returns its ID.
func (f *FakeRemote) AddFolder(parentID, name string) string {
	return f.add(parentID, name, model.KindFolder, nil)
}

// AddFile seeds a file under parentID and returns its ID.
func (f *FakeRemote) AddFile(parentID, name string, data []byte) string {
	return f.add(parentID, name, model.KindFile, data)
}

func (f *FakeRemote) add(parentID, name string, kind model.ItemKind, data []byte) string {
	f.nextID++
	id := fmt.Sprintf("id-%d", f.nextID)
	f.nodes[id] = &node{id: id, name: name, parent: parentID, kind: kind, data: data}
	return id
}

// Path returns the slash-separated path of an item, rooted at "".
func (f *FakeRemote) Path(id string) string {
	if id == api.RootID {
		return ""
	}
	n, ok := f.nodes[id]
	if !ok {
		return "<unknown:" + id + ">"
	}
	return f.Path(n.parent) + "/" + n.name
}

// Tree returns every stored path sorted, files suffixed with " (file)",
// for direct comparison against an expected layout.
func (f *FakeRemote) Tree() []string {
	paths := make([]string, 0, len(f.nodes))
	for id, n := range f.nodes {
		p := f.Path(id)
		if n.kind == model.KindFile {
			p += " (file)"
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// FileData returns the stored content of the file at path.
func (f *FakeRemote) FileData(path string) ([]byte, bool) {
	for id, n := range f.nodes {
		if n.kind == model.KindFile && f.Path(id) == path {
			return n.data, true
		}
	}
	return nil, false
}

func (f *FakeRemote) children(parentID string) []*node {
	var out []*node
	for _, n := range f.nodes {
		if n.parent == parentID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func (f *FakeRemote) checkParent(op, parentID string) error {
	if parentID == api.RootID {
		return nil
	}
	n, ok := f.nodes[parentID]
	if !ok {
		return &api.RemoteError{Op: op, Path: parentID, Err: errors.New("parent does not exist")}
	}
	if n.kind != model.KindFolder {
		return &api.RemoteError{Op: op, Path: f.Path(parentID), Err: errors.New("parent is not a folder")}
	}
	return nil
}

func item(n *node) model.Item {
	return model.Item{ID: n.id, Name: n.name, Kind: n.kind, ParentID: n.parent}
}

// FindFolder implements api.Remote.
func (f *FakeRemote) FindFolder(ctx context.Context, parentID, name string) (model.Item, error) {
	if err := f.checkParent("find folder", parentID); err != nil {
		return model.Item{}, err
	}
	for _, n := range f.children(parentID) {
		if n.name == name && n.kind == model.KindFolder {
			return item(n), nil
		}
	}
	return model.Item{}, &api.RemoteError{Op: "find folder", Path: name, Err: api.ErrNotFound}
}

// FindChildren implements api.Remote.
func (f *FakeRemote) FindChildren(ctx context.Context, parentID, name string) ([]model.Item, error) {
	if err := f.checkParent("find children", parentID); err != nil {
		return nil, err
	}
	var out []model.Item
	for _, n := range f.children(parentID) {
		if n.name == name {
			out = append(out, item(n))
		}
	}
	return out, nil
}

// ListChildren implements api.Remote.
func (f *FakeRemote) ListChildren(ctx context.Context, folderID string) ([]model.Item, error) {
	if err := f.checkParent("list", folderID); err != nil {
		return nil, err
	}
	var out []model.Item
	for _, n := range f.children(folderID) {
		out = append(out, item(n))
	}
	return out, nil
}

// CreateFolder implements api.Remote.
func (f *FakeRemote) CreateFolder(ctx context.Context, parentID, name string) (model.Item, error) {
	if err := f.checkParent("create folder", parentID); err != nil {
		return model.Item{}, err
	}
	id := f.AddFolder(parentID, name)
	f.Ops = append(f.Ops, "mkdir "+f.Path(id))
	return item(f.nodes[id]), nil
}

// Delete implements api.Remote. Deleting a folder removes the subtree, the
// way the real service does.
func (f *FakeRemote) Delete(ctx context.Context, itemID string) error {
	n, ok := f.nodes[itemID]
	if !ok {
		return &api.RemoteError{Op: "delete", Path: itemID, Err: api.ErrNotFound}
	}
	path := f.Path(itemID)
	if f.FailDelete[path] {
		return &api.RemoteError{Op: "delete", Path: path, Err: errors.New("permission denied")}
	}
	f.removeSubtree(n.id)
	f.Ops = append(f.Ops, "delete "+path)
	return nil
}

func (f *FakeRemote) removeSubtree(id string) {
	for _, child := range f.children(id) {
		f.removeSubtree(child.id)
	}
	delete(f.nodes, id)
}

// Upload implements api.Remote.
func (f *FakeRemote) Upload(ctx context.Context, parentID, name string, r io.Reader, size int64) (model.Item, error) {
	if err := f.checkParent("upload", parentID); err != nil {
		return model.Item{}, err
	}
	path := f.Path(parentID) + "/" + name
	if f.FailUpload[path] {
		return model.Item{}, &api.RemoteError{Op: "upload", Path: path, Err: errors.New("quota exceeded")}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return model.Item{}, &api.RemoteError{Op: "upload", Path: path, Err: err}
	}
	id := f.AddFile(parentID, name, data)
	f.Ops = append(f.Ops, "upload "+path)
	return item(f.nodes[id]), nil
}
