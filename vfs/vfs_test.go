package vfs_test

import (
	"sort"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp"
	"github.com/rogpeppe/go-internal/txtar"

	"github.com/everruns/bashkit-sub001/vfs"
)

func TestWriteReadRoundTrip(t *testing.T) {
	c := qt.New(t)
	fs := vfs.New()
	c.Assert(fs.Write("/a/b/c.txt", []byte("hello"), "w"), qt.IsNil)
	data, err := fs.Read("/a/b/c.txt")
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "hello")
}

func TestWriteAppend(t *testing.T) {
	c := qt.New(t)
	fs := vfs.New()
	c.Assert(fs.Write("/f", []byte("one"), "w"), qt.IsNil)
	c.Assert(fs.Write("/f", []byte("two"), "a"), qt.IsNil)
	data, err := fs.Read("/f")
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "onetwo")
}

func TestLookupDoesNotFollowSymlink(t *testing.T) {
	c := qt.New(t)
	fs := vfs.New()
	c.Assert(fs.Write("/target", []byte("real"), "w"), qt.IsNil)
	c.Assert(fs.CreateSymlink("/link", "/target"), qt.IsNil)
	n, err := fs.Lookup("/link")
	c.Assert(err, qt.IsNil)
	c.Assert(n.Kind(), qt.Equals, vfs.KindSymlink)
}

func TestResolveSymlinkOneHop(t *testing.T) {
	c := qt.New(t)
	fs := vfs.New()
	c.Assert(fs.Write("/target", []byte("real"), "w"), qt.IsNil)
	c.Assert(fs.CreateSymlink("/link", "/target"), qt.IsNil)
	resolved, n, err := fs.ResolveSymlink("/link")
	c.Assert(err, qt.IsNil)
	c.Assert(resolved, qt.Equals, "/target")
	c.Assert(n.Kind(), qt.Equals, vfs.KindRegular)
}

func TestRemoveInstallsWhiteoutOverLowerLayer(t *testing.T) {
	c := qt.New(t)
	fs := vfs.New()
	c.Assert(fs.Write("/f", []byte("base"), "w"), qt.IsNil)
	fs.Mount("overlay", true)
	c.Assert(fs.Remove("/f"), qt.IsNil)
	_, err := fs.Lookup("/f")
	c.Assert(err, qt.Not(qt.IsNil))
	fs.Unmount()
	data, err := fs.Read("/f")
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "base")
}

func TestListMergesLayersHonoringWhiteout(t *testing.T) {
	c := qt.New(t)
	fs := vfs.New()
	c.Assert(fs.Write("/dir/a", []byte("1"), "w"), qt.IsNil)
	c.Assert(fs.Write("/dir/b", []byte("2"), "w"), qt.IsNil)
	fs.Mount("overlay", true)
	c.Assert(fs.Remove("/dir/a"), qt.IsNil)
	c.Assert(fs.Write("/dir/c", []byte("3"), "w"), qt.IsNil)
	entries, err := fs.List("/dir")
	c.Assert(err, qt.IsNil)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	c.Assert(names, qt.DeepEquals, []string{"b", "c"})
}

func TestRenameMovesDirectoryRecursively(t *testing.T) {
	c := qt.New(t)
	fs := vfs.New()
	c.Assert(fs.Write("/src/f", []byte("x"), "w"), qt.IsNil)
	c.Assert(fs.Rename("/src", "/dst"), qt.IsNil)
	data, err := fs.Read("/dst/f")
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "x")
	_, err = fs.Lookup("/src")
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestIsExecutable(t *testing.T) {
	c := qt.New(t)
	fs := vfs.New()
	c.Assert(fs.Write("/bin/tool", []byte("#!/bin/sh\n"), "w"), qt.IsNil)
	c.Assert(fs.IsExecutable("/bin/tool"), qt.IsFalse)
	c.Assert(fs.Chmod("/bin/tool", vfs.DefaultExecPerm), qt.IsNil)
	c.Assert(fs.IsExecutable("/bin/tool"), qt.IsTrue)
}

func TestResolvePath(t *testing.T) {
	c := qt.New(t)
	c.Assert(vfs.ResolvePath("/home/user", "sub/file"), qt.Equals, "/home/user/sub/file")
	c.Assert(vfs.ResolvePath("/home/user", "/abs/file"), qt.Equals, "/abs/file")
	c.Assert(vfs.ResolvePath("/home/user", "../other"), qt.Equals, "/home/other")
}

func TestManifestApply(t *testing.T) {
	c := qt.New(t)
	fs := vfs.New()
	manifest, err := vfs.LoadManifest([]byte(`
dirs:
  - /etc
files:
  - path: /etc/motd
    content_b64: aGVsbG8=
`))
	c.Assert(err, qt.IsNil)
	c.Assert(manifest.Apply(fs), qt.IsNil)
	data, err := fs.Read("/etc/motd")
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "hello")
}

func TestWriteTxtarFixtureProducesExpectedTree(t *testing.T) {
	c := qt.New(t)

	archive := txtar.Parse([]byte(`
-- etc/motd --
welcome
-- home/alice/.bashrc --
export PS1='$ '
-- home/alice/notes/todo.txt --
buy milk
`))

	fs := vfs.New()
	for _, f := range archive.Files {
		err := fs.Write("/"+f.Name, f.Data, "w")
		c.Assert(err, qt.IsNil)
	}

	var got []string
	var walk func(dir string)
	walk = func(dir string) {
		entries, err := fs.List(dir)
		c.Assert(err, qt.IsNil)
		for _, e := range entries {
			p := vfs.ResolvePath(dir, e.Name)
			if e.Node.Kind() == vfs.KindDir {
				walk(p)
				continue
			}
			got = append(got, p)
		}
	}
	walk("/")
	sort.Strings(got)

	want := []string{
		"/etc/motd",
		"/home/alice/.bashrc",
		"/home/alice/notes/todo.txt",
	}
	sort.Strings(want)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("path set mismatch (-want +got):\n%s", diff)
	}

	data, err := fs.Read("/home/alice/.bashrc")
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "export PS1='$ '\n")
}
