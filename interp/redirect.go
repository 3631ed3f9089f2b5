package interp

import (
	"fmt"
	"io"
	"strings"

	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/expand"
	"github.com/everruns/bashkit-sub001/token"
	"github.com/everruns/bashkit-sub001/vfs"
)

// savedStreams lets pushRedirs restore whatever stdout/stderr/stdin were
// in effect before a Stmt's redirections were applied.
type savedStreams struct {
	stdout io.Writer
	stderr io.Writer
	stdin  []byte
}

// vfsWriter adapts a VFS path into an io.Writer: the first Write truncates
// (or appends, for `>>`), every subsequent Write on the same instance
// appends, so multiple writes within one redirected block accumulate
// correctly instead of re-truncating each time.
type vfsWriter struct {
	fs   *vfs.FS
	path string
	mode string
	used bool
}

func (w *vfsWriter) Write(p []byte) (int, error) {
	mode := w.mode
	if w.used {
		mode = "a"
	}
	if err := w.fs.Write(w.path, p, mode); err != nil {
		return 0, err
	}
	w.used = true
	return len(p), nil
}

// pushRedirs applies each redirect in order, returning the previous
// stream state to restore via popRedirs. A later redirect targeting the
// same fd shadows an earlier one, matching bash's left-to-right rule.
func (r *Runner) pushRedirs(cfg *expand.Config, redirs []*ast.Redirect) (savedStreams, error) {
	saved := savedStreams{stdout: r.stdout, stderr: r.stderr, stdin: r.stdin}
	for _, rd := range redirs {
		if err := r.applyRedirect(cfg, rd); err != nil {
			return saved, err
		}
	}
	return saved, nil
}

func (r *Runner) popRedirs(saved savedStreams) {
	r.stdout = saved.stdout
	r.stderr = saved.stderr
	r.stdin = saved.stdin
}

func targetFd(rd *ast.Redirect, def int) int {
	if rd.Fd != nil {
		return *rd.Fd
	}
	return def
}

func (r *Runner) applyRedirect(cfg *expand.Config, rd *ast.Redirect) error {
	switch rd.Op {
	case token.LSS, token.RDRINOUT:
		path, err := expand.Literal(cfg, rd.Word)
		if err != nil {
			return err
		}
		data, rerr := r.VFS.Read(vfs.ResolvePath(r.cwd(), path))
		if rerr != nil {
			return fmt.Errorf("%s: %w", path, rerr)
		}
		r.stdin = data
		return nil

	case token.GTR, token.SHR, token.RDRALL, token.APPALL:
		path, err := expand.Literal(cfg, rd.Word)
		if err != nil {
			return err
		}
		mode := "w"
		if rd.Op == token.SHR || rd.Op == token.APPALL {
			mode = "a"
		}
		w := &vfsWriter{fs: r.VFS, path: vfs.ResolvePath(r.cwd(), path), mode: mode}
		fd := targetFd(rd, 1)
		switch {
		case rd.Op == token.RDRALL || rd.Op == token.APPALL:
			r.stdout, r.stderr = w, w
		case fd == 2:
			r.stderr = w
		default:
			r.stdout = w
		}
		return nil

	case token.SHL, token.DHEREDOC:
		body := ""
		if rd.Hdoc != nil {
			text, err := expand.Literal(cfg, *rd.Hdoc)
			if err != nil {
				return err
			}
			body = text
		}
		if rd.Op == token.DHEREDOC {
			body = stripLeadingTabs(body)
		}
		r.stdin = []byte(body)
		return nil

	case token.WHEREDOC:
		text, err := expand.Literal(cfg, rd.Word)
		if err != nil {
			return err
		}
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		r.stdin = []byte(text)
		return nil

	case token.DPLOUT:
		text, err := expand.Literal(cfg, rd.Word)
		if err != nil {
			return err
		}
		fd := targetFd(rd, 1)
		if text == "-" {
			if fd == 2 {
				r.stderr = io.Discard
			} else {
				r.stdout = io.Discard
			}
			return nil
		}
		switch text {
		case "1":
			if fd == 2 {
				r.stderr = r.stdout
			}
		case "2":
			if fd == 1 {
				r.stdout = r.stderr
			}
		}
		return nil

	case token.DPLIN:
		// `N<&M` fd-duplication for input has no observable effect in the
		// whole-buffer stdin model: there is exactly one stdin buffer,
		// never a set of independently-seekable fds.
		return nil
	}
	return nil
}

func stripLeadingTabs(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimLeft(l, "\t")
	}
	return strings.Join(lines, "\n")
}
