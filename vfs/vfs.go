// Package vfs implements the layered, copy-on-write virtual filesystem
// described in spec.md §3 "VFS model" / "Layering": every path touch a
// script makes goes through here, never through the real os/syscall
// filesystem.
package vfs

import (
	"errors"
	"path"
	"strings"
	"time"
)

// Kind distinguishes the three node kinds the VFS supports.
type Kind int

const (
	KindRegular Kind = iota
	KindDir
	KindSymlink
)

// Perm mirrors the low nine permission bits of a Unix mode; the node
// kind is carried separately by Kind (this package never talks to a real
// filesystem, so there is no need for the rest of os.FileMode).
type Perm uint32

const (
	PermOwnerRead  Perm = 0o400
	PermOwnerWrite Perm = 0o200
	PermOwnerExec  Perm = 0o100
	PermGroupRead  Perm = 0o040
	PermGroupWrite Perm = 0o020
	PermGroupExec  Perm = 0o010
	PermOtherRead  Perm = 0o004
	PermOtherWrite Perm = 0o002
	PermOtherExec  Perm = 0o001

	DefaultFilePerm = PermOwnerRead | PermOwnerWrite | PermGroupRead | PermOtherRead
	DefaultDirPerm  = 0o755
	DefaultExecPerm = 0o755
)

// Executable reports whether any of the exec bits is set; BashKit treats
// "the exec bit is sufficient to invoke a VFS file as a command" as the
// resolution of spec.md §9's open question.
func (p Perm) Executable() bool { return p&(PermOwnerExec|PermGroupExec|PermOtherExec) != 0 }

// Metadata is returned by FS.Metadata; it is a value type so callers
// can't mutate node state through it.
type Metadata struct {
	Kind  Kind
	Size  int64
	Perm  Perm
	Mtime time.Time
	UID   int
	GID   int
}

// Node is the interface shared by every entry the VFS stores. Nodes are
// immutable; a write produces a new node installed in the top layer
// (copy-on-write), never a mutation of a node a lower layer still sees.
type Node interface {
	Kind() Kind
	Metadata() Metadata
}

// RegularFile is an immutable byte blob.
type RegularFile struct {
	Bytes []byte
	Perm  Perm
	Mtime time.Time
	UID   int
	GID   int
}

func (f *RegularFile) Kind() Kind { return KindRegular }
func (f *RegularFile) Metadata() Metadata {
	return Metadata{Kind: KindRegular, Size: int64(len(f.Bytes)), Perm: f.Perm, Mtime: f.Mtime, UID: f.UID, GID: f.GID}
}

// Directory marks a path as a directory. Its children are not stored
// here; FS.List derives them by scanning each layer's flat path index
// for direct children of this path, honoring whiteouts — that keeps a
// directory's listing always consistent with whatever writes actually
// landed, instead of requiring two copies of the same fact to agree.
type Directory struct {
	Perm  Perm
	Mtime time.Time
	UID   int
	GID   int
}

func (d *Directory) Kind() Kind { return KindDir }
func (d *Directory) Metadata() Metadata {
	return Metadata{Kind: KindDir, Perm: d.Perm, Mtime: d.Mtime, UID: d.UID, GID: d.GID}
}

// Symlink stores a target path verbatim; the VFS never auto-follows it
// during lookup (spec.md §3: "symlinks are stored but not traversed
// during lookup"). The `[[ ]]` file tests call ResolveSymlink
// explicitly; `cd` and command resolution do not follow symlinks.
type Symlink struct {
	Target string
	Mtime  time.Time
	UID    int
	GID    int
}

func (s *Symlink) Kind() Kind { return KindSymlink }
func (s *Symlink) Metadata() Metadata {
	return Metadata{Kind: KindSymlink, Size: int64(len(s.Target)), Perm: 0o777, Mtime: s.Mtime}
}

// PathError is returned by every operation that fails because of what
// the path names, not an internal VFS defect.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string { return e.Op + " " + e.Path + ": " + e.Err.Error() }
func (e *PathError) Unwrap() error { return e.Err }

var (
	ErrNotExist    = errors.New("no such file or directory")
	ErrExist       = errors.New("file exists")
	ErrNotDir      = errors.New("not a directory")
	ErrIsDir       = errors.New("is a directory")
	ErrNotEmpty    = errors.New("directory not empty")
	ErrPermission  = errors.New("permission denied")
	ErrTooManyLinks = errors.New("too many levels of symbolic links")
)

// Clean collapses "." and ".." purely syntactically (no symlink
// awareness — spec.md §3: "Paths are absolute after resolution; '.'/'..'
// are collapsed syntactically").
func Clean(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// Split returns a path's parent directory and base name, both cleaned.
func Split(p string) (dir, base string) {
	p = Clean(p)
	if p == "/" {
		return "/", ""
	}
	dir, base = path.Split(p)
	return Clean(dir), base
}
