package expand

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/scope"
	"github.com/everruns/bashkit-sub001/vfs"
)

func TestExpandTildeHome(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Scope.Set("HOME", scope.NewScalar("/home/alice"))
	c.Assert(ExpandTilde(cfg, &ast.Tilde{}), qt.Equals, "/home/alice")
}

func TestExpandTildePlusMinus(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Scope.Set("PWD", scope.NewScalar("/work"))
	cfg.Scope.Set("OLDPWD", scope.NewScalar("/home/alice"))
	c.Assert(ExpandTilde(cfg, &ast.Tilde{User: "+"}), qt.Equals, "/work")
	c.Assert(ExpandTilde(cfg, &ast.Tilde{User: "-"}), qt.Equals, "/home/alice")
}

func TestExpandTildeUserFromPasswd(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.VFS = vfs.New()
	cfg.VFS.MkdirAll("/etc")
	c.Assert(cfg.VFS.Create("/etc/passwd", vfs.KindRegular, vfs.DefaultFilePerm), qt.IsNil)
	c.Assert(cfg.VFS.Write("/etc/passwd", []byte("bob:x:1000:1000:Bob:/home/bob:/bin/sh\n"), "w"), qt.IsNil)
	c.Assert(ExpandTilde(cfg, &ast.Tilde{User: "bob"}), qt.Equals, "/home/bob")
}

func TestExpandTildeUnknownUserLeftLiteral(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.VFS = vfs.New()
	c.Assert(ExpandTilde(cfg, &ast.Tilde{User: "nobody"}), qt.Equals, "~nobody")
}
