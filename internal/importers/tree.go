package importers

import (
	"context"
	"log"
	"path"
	"sort"

	"github.com/mrlokans/google-importer/internal/storage"
	"github.com/mrlokans/google-importer/internal/transform"
)

// folderNode is one remote folder. path is set once the folder exists
// locally.
type folderNode struct {
	id     string
	name   string
	parent string
	path   string
}

// DirectoryIndex maps remote folder ids to their local paths. It is built
// from a flat folder listing first and materialized in a separate pass.
type DirectoryIndex struct {
	nodes map[string]*folderNode
}

func NewDirectoryIndex() *DirectoryIndex {
	return &DirectoryIndex{nodes: make(map[string]*folderNode)}
}

// Add records a remote folder. parentID may be empty or name a folder that
// is never added, in which case the folder is placed under the root.
func (d *DirectoryIndex) Add(id, name, parentID string) {
	d.nodes[id] = &folderNode{id: id, name: transform.SanitizeName(name), parent: parentID}
}

func (d *DirectoryIndex) Len() int {
	return len(d.nodes)
}

// Path returns the local path of a materialized folder.
func (d *DirectoryIndex) Path(id string) (string, bool) {
	node, ok := d.nodes[id]
	if !ok || node.path == "" {
		return "", false
	}
	return node.path, true
}

// Materialize creates every folder under root, parents before children.
// A folder whose ancestry loops back on itself is attached to root. A file
// in the way of a folder aborts with *FolderCreationConflictError.
func (d *DirectoryIndex) Materialize(ctx context.Context, sink storage.FileSink, root string) error {
	ids := make([]string, 0, len(d.nodes))
	for id := range d.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := d.resolve(ctx, sink, root, id, make(map[string]bool)); err != nil {
			return err
		}
	}
	return nil
}

func (d *DirectoryIndex) resolve(ctx context.Context, sink storage.FileSink, root, id string, visiting map[string]bool) error {
	node := d.nodes[id]
	if node.path != "" {
		return nil
	}
	visiting[id] = true

	parentPath := root
	if parent, ok := d.nodes[node.parent]; ok {
		if visiting[parent.id] {
			log.Printf("Drive import: folder %s is part of a parent cycle, placing it at the root", node.id)
		} else {
			if err := d.resolve(ctx, sink, root, parent.id, visiting); err != nil {
				return err
			}
			parentPath = parent.path
		}
	}

	p := path.Join(parentPath, node.name)
	if err := createFolder(ctx, sink, p); err != nil {
		return err
	}
	node.path = p
	return nil
}
