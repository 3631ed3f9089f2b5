package vfs

import (
	"sort"
	"strings"
	"time"
)

// Entry is one row of a directory listing.
type Entry struct {
	Name string
	Node Node
}

// Create makes a new node of the given kind at p. For KindRegular it
// starts out empty; use Write to populate it. The parent directory must
// already exist.
func (fs *FS) Create(p string, kind Kind, perm Perm) error {
	p = Clean(p)
	if p == "/" {
		return &PathError{"create", p, ErrExist}
	}
	dir, name := Split(p)
	if _, err := fs.parentDir(p); err != nil {
		return &PathError{"create", p, err}
	}
	if n, err := fs.Lookup(p); err == nil && !isWhiteout(n) {
		return &PathError{"create", p, ErrExist}
	}
	top := fs.topWritable()
	switch kind {
	case KindDir:
		top.entries[p] = &Directory{Perm: perm, Mtime: now()}
	case KindRegular:
		top.entries[p] = &RegularFile{Perm: perm, Mtime: now()}
	default:
		return &PathError{"create", p, ErrPermission}
	}
	_ = dir
	_ = name
	return nil
}

// CreateSymlink creates a symlink node at p pointing at target.
func (fs *FS) CreateSymlink(p, target string) error {
	p = Clean(p)
	if _, err := fs.parentDir(p); err != nil {
		return &PathError{"create", p, err}
	}
	fs.topWritable().entries[p] = &Symlink{Target: target, Mtime: now()}
	return nil
}

// Read returns the bytes of the regular file at p.
func (fs *FS) Read(p string) ([]byte, error) {
	n, err := fs.Lookup(p)
	if err != nil {
		return nil, err
	}
	rf, ok := n.(*RegularFile)
	if !ok {
		return nil, &PathError{"read", p, ErrIsDir}
	}
	out := make([]byte, len(rf.Bytes))
	copy(out, rf.Bytes)
	return out, nil
}

// Write replaces (mode "w") or appends to (mode "a") the regular file at
// p, creating it (and, per mkdirAll, its parent chain) if absent. Write
// always lands in the top writable layer — an existing lower-layer file
// is copied up implicitly because the new node entirely replaces the
// top's view of the path.
func (fs *FS) Write(p string, data []byte, mode string) error {
	p = Clean(p)
	dir, _ := Split(p)
	if err := fs.ensureDirChain(dir); err != nil {
		return &PathError{"write", p, err}
	}
	perm := Perm(DefaultFilePerm)
	var out []byte
	switch mode {
	case "a":
		if n, err := fs.Lookup(p); err == nil {
			rf, ok := n.(*RegularFile)
			if !ok {
				return &PathError{"write", p, ErrIsDir}
			}
			out = append(append([]byte{}, rf.Bytes...), data...)
			perm = rf.Perm
		} else {
			out = append([]byte{}, data...)
		}
	default: // "w" or ""
		if n, err := fs.Lookup(p); err == nil {
			if _, ok := n.(*Directory); ok {
				return &PathError{"write", p, ErrIsDir}
			}
			if rf, ok := n.(*RegularFile); ok {
				perm = rf.Perm
			}
		}
		out = append([]byte{}, data...)
	}
	fs.topWritable().entries[p] = &RegularFile{Bytes: out, Perm: perm, Mtime: now()}
	return nil
}

// Chmod sets the permission bits of the node at p.
func (fs *FS) Chmod(p string, perm Perm) error {
	n, err := fs.Lookup(p)
	if err != nil {
		return err
	}
	top := fs.topWritable()
	switch v := n.(type) {
	case *RegularFile:
		top.entries[p] = &RegularFile{Bytes: v.Bytes, Perm: perm, Mtime: v.Mtime, UID: v.UID, GID: v.GID}
	case *Directory:
		top.entries[p] = &Directory{Perm: perm, Mtime: v.Mtime, UID: v.UID, GID: v.GID}
	default:
		return &PathError{"chmod", p, ErrPermission}
	}
	return nil
}

// Remove deletes the node at p. If p is only visible in a lower layer,
// Remove installs a whiteout in the top writable layer rather than
// mutating the layer that still owns it.
func (fs *FS) Remove(p string) error {
	p = Clean(p)
	if p == "/" {
		return &PathError{"remove", p, ErrPermission}
	}
	n, err := fs.Lookup(p)
	if err != nil {
		return err
	}
	if d, ok := n.(*Directory); ok {
		_ = d
		entries, err := fs.List(p)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			return &PathError{"remove", p, ErrNotEmpty}
		}
	}
	fs.topWritable().entries[p] = whiteout{}
	return nil
}

// Rename moves the node at src to dst (within the top writable layer's
// view): it's equivalent to a Remove at src plus installing src's node
// at dst.
func (fs *FS) Rename(src, dst string) error {
	src, dst = Clean(src), Clean(dst)
	n, err := fs.Lookup(src)
	if err != nil {
		return err
	}
	if _, err := fs.parentDir(dst); err != nil {
		return &PathError{"rename", dst, err}
	}
	top := fs.topWritable()
	top.entries[dst] = n
	if d, ok := n.(*Directory); ok {
		_ = d
		children, _ := fs.List(src)
		for _, c := range children {
			oldPath := joinDir(src, c.Name)
			newPath := joinDir(dst, c.Name)
			if err := fs.Rename(oldPath, newPath); err != nil {
				return err
			}
		}
	}
	top.entries[src] = whiteout{}
	return nil
}

// List enumerates the direct children of the directory at p, merging
// every layer top-down and honoring whiteouts — a name whiteout-ed in an
// upper layer never appears even if a lower layer still has it.
func (fs *FS) List(p string) ([]Entry, error) {
	p = Clean(p)
	n, err := fs.Lookup(p)
	if err != nil {
		return nil, err
	}
	if _, ok := n.(*Directory); !ok {
		return nil, &PathError{"list", p, ErrNotDir}
	}
	seen := map[string]Node{}
	order := []string{}
	for i := len(fs.layers) - 1; i >= 0; i-- {
		for path, node := range fs.layers[i].entries {
			if path == p {
				continue
			}
			dir, name := Split(path)
			if dir != p || name == "" {
				continue
			}
			if _, already := seen[name]; already {
				continue
			}
			seen[name] = node
			order = append(order, name)
		}
	}
	sort.Strings(order)
	out := make([]Entry, 0, len(order))
	for _, name := range order {
		node := seen[name]
		if isWhiteout(node) {
			continue
		}
		out = append(out, Entry{Name: name, Node: node})
	}
	return out, nil
}

// Metadata returns the Metadata of the node at p.
func (fs *FS) Metadata(p string) (Metadata, error) {
	n, err := fs.Lookup(p)
	if err != nil {
		return Metadata{}, err
	}
	return n.Metadata(), nil
}

// IsExecutable reports whether p names a regular file with an exec bit
// set; ported from the executable-bit-stat pattern used for real-OS
// PATH lookups, adapted to VFS metadata instead of os.Stat.
func (fs *FS) IsExecutable(p string) bool {
	n, err := fs.Lookup(p)
	if err != nil {
		if _, n2, err2 := fs.ResolveSymlink(p); err2 == nil {
			n = n2
		} else {
			return false
		}
	}
	rf, ok := n.(*RegularFile)
	return ok && rf.Perm.Executable()
}

// MkdirAll creates p and any missing ancestors as directories.
func (fs *FS) MkdirAll(p string) error {
	return fs.ensureDirChain(Clean(p))
}

// ResolvePath joins a possibly-relative path against cwd and cleans it,
// the path-resolution helper every builtin and the evaluator use (spec.md
// §4.G: "path resolution that honors PWD").
func ResolvePath(cwd, p string) string {
	if strings.HasPrefix(p, "/") {
		return Clean(p)
	}
	return Clean(cwd + "/" + p)
}

// now is a seam so the VFS never calls time.Now() directly from deep
// inside a write path that a future deterministic-replay mode might want
// to stub; today it's a direct passthrough.
func now() time.Time { return time.Now() }
