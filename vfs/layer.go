package vfs

import "strings"

// whiteout marks a name as deleted in this layer, hiding it in every
// layer below (spec.md §3 Layering).
type whiteout struct{}

func (whiteout) Kind() Kind         { return -1 }
func (whiteout) Metadata() Metadata { return Metadata{} }

func isWhiteout(n Node) bool {
	_, ok := n.(whiteout)
	return ok
}

// layer is one level of the overlay stack: a sparse map from absolute,
// cleaned path to Node (or a whiteout).
type layer struct {
	name     string
	writable bool
	entries  map[string]Node
}

func newLayer(name string, writable bool) *layer {
	return &layer{name: name, writable: writable, entries: map[string]Node{"/": &Directory{Perm: DefaultDirPerm}}}
}

func (l *layer) get(p string) (Node, bool) {
	n, ok := l.entries[p]
	return n, ok
}

// FS is the runtime filesystem: a stack of layers, base at index 0, most
// recently mounted overlay at the end. Reads walk top-to-bottom; writes
// go to the top writable layer, copying a modified node up from a lower
// layer first (copy-on-write).
type FS struct {
	layers []*layer
}

// New returns an FS with a single writable base layer.
func New() *FS {
	return &FS{layers: []*layer{newLayer("base", true)}}
}

// Mount pushes a new layer on top. A read-only layer is typically used
// for a host-supplied prewarmed_vfs_layer (§6.1 Config); a writable one
// lets the host stage changes it can discard by Unmount-ing.
func (fs *FS) Mount(name string, writable bool) {
	fs.layers = append(fs.layers, newLayer(name, writable))
}

// Unmount pops the topmost layer. It is a no-op on a single-layer FS so
// the always-writable base can never be removed out from under scripts.
func (fs *FS) Unmount() {
	if len(fs.layers) > 1 {
		fs.layers = fs.layers[:len(fs.layers)-1]
	}
}

func (fs *FS) topWritable() *layer {
	for i := len(fs.layers) - 1; i >= 0; i-- {
		if fs.layers[i].writable {
			return fs.layers[i]
		}
	}
	return fs.layers[0]
}

// Lookup finds the node at path p, walking layers top-down. It does not
// follow symlinks (spec.md §3/§9).
func (fs *FS) Lookup(p string) (Node, error) {
	p = Clean(p)
	for i := len(fs.layers) - 1; i >= 0; i-- {
		if n, ok := fs.layers[i].get(p); ok {
			if isWhiteout(n) {
				return nil, &PathError{"lookup", p, ErrNotExist}
			}
			return n, nil
		}
	}
	return nil, &PathError{"lookup", p, ErrNotExist}
}

// ResolveSymlink follows at most one hop if the node at p is a Symlink,
// per the §9 resolution recorded in SPEC_FULL.md ("lookup does not
// follow; the call sites that need POSIX-like behavior do").
func (fs *FS) ResolveSymlink(p string) (string, Node, error) {
	n, err := fs.Lookup(p)
	if err != nil {
		return p, nil, err
	}
	if sl, ok := n.(*Symlink); ok {
		target := sl.Target
		if !strings.HasPrefix(target, "/") {
			dir, _ := Split(p)
			target = Clean(dir + "/" + target)
		}
		n2, err := fs.Lookup(target)
		if err != nil {
			return target, nil, err
		}
		if _, ok := n2.(*Symlink); ok {
			return target, nil, &PathError{"resolve", p, ErrTooManyLinks}
		}
		return target, n2, nil
	}
	return p, n, nil
}

// parentDir returns the Directory node for p's parent, failing if the
// parent doesn't exist or isn't a directory.
func (fs *FS) parentDir(p string) (string, error) {
	dir, _ := Split(p)
	n, err := fs.Lookup(dir)
	if err != nil {
		return dir, err
	}
	if _, ok := n.(*Directory); !ok {
		return dir, &PathError{"lookup", dir, ErrNotDir}
	}
	return dir, nil
}

// ensureDirChain makes sure every ancestor of dir exists as a Directory
// node visible from the top of the stack, materializing missing levels
// in the top writable layer. It does not copy-up existing directories —
// a Directory node carries no child list to invalidate, so sharing it
// across layers is safe; only files are copy-on-write.
func (fs *FS) ensureDirChain(dir string) error {
	if dir == "/" {
		if _, err := fs.Lookup("/"); err != nil {
			fs.topWritable().entries["/"] = &Directory{Perm: DefaultDirPerm}
		}
		return nil
	}
	if n, err := fs.Lookup(dir); err == nil {
		if _, ok := n.(*Directory); !ok {
			return &PathError{"write", dir, ErrNotDir}
		}
		return nil
	}
	parent, _ := Split(dir)
	if err := fs.ensureDirChain(parent); err != nil {
		return err
	}
	fs.topWritable().entries[dir] = &Directory{Perm: DefaultDirPerm}
	return nil
}

func joinDir(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}
