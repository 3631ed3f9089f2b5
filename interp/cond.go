package interp

import (
	"regexp"

	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/expand"
	"github.com/everruns/bashkit-sub001/parser"
	"github.com/everruns/bashkit-sub001/pattern"
	"github.com/everruns/bashkit-sub001/token"
	"github.com/everruns/bashkit-sub001/vfs"
)

// evalCond evaluates a `[[ ]]` conditional expression tree.
func (r *Runner) evalCond(cfg *expand.Config, x ast.CondExpr) (bool, error) {
	switch c := x.(type) {
	case *ast.CondWord:
		s, err := expand.Literal(cfg, c.X)
		if err != nil {
			return false, err
		}
		return s != "", nil
	case *ast.CondUnary:
		return r.evalCondUnary(cfg, c)
	case *ast.CondBinary:
		return r.evalCondBinary(cfg, c)
	case *ast.CondNot:
		v, err := r.evalCond(cfg, c.X)
		if err != nil {
			return false, err
		}
		return !v, nil
	case *ast.CondAndOr:
		l, err := r.evalCond(cfg, c.X)
		if err != nil {
			return false, err
		}
		if c.Op == token.LAND {
			if !l {
				return false, nil
			}
			return r.evalCond(cfg, c.Y)
		}
		if l {
			return true, nil
		}
		return r.evalCond(cfg, c.Y)
	case *ast.CondGroup:
		return r.evalCond(cfg, c.X)
	}
	return false, nil
}

// statFollow stats path, following exactly one symlink hop if the node
// at path is itself a symlink (spec.md §3: lookup never auto-follows,
// but file tests other than -L want the POSIX stat(2) behavior).
func (r *Runner) statFollow(path string) (vfs.Metadata, bool) {
	n, err := r.VFS.Lookup(path)
	if err != nil {
		return vfs.Metadata{}, false
	}
	if n.Kind() == vfs.KindSymlink {
		_, n2, rerr := r.VFS.ResolveSymlink(path)
		if rerr != nil {
			return vfs.Metadata{}, false
		}
		return n2.Metadata(), true
	}
	return n.Metadata(), true
}

func (r *Runner) evalCondUnary(cfg *expand.Config, u *ast.CondUnary) (bool, error) {
	s, err := expand.Literal(cfg, u.X)
	if err != nil {
		return false, err
	}
	switch u.Op {
	case token.TESTZ:
		return s == "", nil
	case token.TESTN:
		return s != "", nil
	case token.TESTO:
		return r.Options.Set(s), nil
	case token.TESTV:
		_, ok := r.Scope.Get(s)
		return ok, nil
	}

	path := vfs.ResolvePath(r.cwd(), s)
	if u.Op == token.TESTL {
		n, err := r.VFS.Lookup(path)
		return err == nil && n.Kind() == vfs.KindSymlink, nil
	}
	meta, ok := r.statFollow(path)
	switch u.Op {
	case token.TESTE:
		return ok, nil
	case token.TESTF:
		return ok && meta.Kind == vfs.KindRegular, nil
	case token.TESTD:
		return ok && meta.Kind == vfs.KindDir, nil
	case token.TESTR:
		return ok && meta.Perm&(vfs.PermOwnerRead|vfs.PermGroupRead|vfs.PermOtherRead) != 0, nil
	case token.TESTW:
		return ok && meta.Perm&(vfs.PermOwnerWrite|vfs.PermGroupWrite|vfs.PermOtherWrite) != 0, nil
	case token.TESTX:
		return ok && meta.Perm.Executable(), nil
	case token.TESTS:
		return ok && meta.Size > 0, nil
	}
	// -p/-b/-c/-g/-u/-k: no special/device/setuid/setgid/sticky node
	// kinds exist in this VFS model, so these always report false.
	return false, nil
}

func (r *Runner) evalCondBinary(cfg *expand.Config, b *ast.CondBinary) (bool, error) {
	switch b.Op {
	case token.TESTEQ, token.TESTNE:
		lhs, err := expand.Literal(cfg, b.X)
		if err != nil {
			return false, err
		}
		pat, err := expand.ExpandPattern(cfg, b.Y)
		if err != nil {
			return false, err
		}
		matched, err := matchCasePattern(pat, lhs)
		if err != nil {
			return false, err
		}
		if b.Op == token.TESTNE {
			matched = !matched
		}
		return matched, nil

	case token.TESTLT, token.TESTGT:
		lhs, err := expand.Literal(cfg, b.X)
		if err != nil {
			return false, err
		}
		rhs, err := expand.Literal(cfg, b.Y)
		if err != nil {
			return false, err
		}
		if b.Op == token.TESTLT {
			return lhs < rhs, nil
		}
		return lhs > rhs, nil

	case token.TESTREGEX:
		lhs, err := expand.Literal(cfg, b.X)
		if err != nil {
			return false, err
		}
		reSrc, err := expand.Literal(cfg, b.Y)
		if err != nil {
			return false, err
		}
		re, err := regexp.Compile(reSrc)
		if err != nil {
			return false, err
		}
		groups := re.FindStringSubmatch(lhs)
		if groups == nil {
			r.Scope.ClearRematch()
			return false, nil
		}
		r.Scope.SetRematch(groups)
		return true, nil

	case token.TESTEQI, token.TESTNEI, token.TESTLTI, token.TESTLEI, token.TESTGTI, token.TESTGEI:
		lv, err := arithLiteral(cfg, b.X)
		if err != nil {
			return false, err
		}
		rv, err := arithLiteral(cfg, b.Y)
		if err != nil {
			return false, err
		}
		switch b.Op {
		case token.TESTEQI:
			return lv == rv, nil
		case token.TESTNEI:
			return lv != rv, nil
		case token.TESTLTI:
			return lv < rv, nil
		case token.TESTLEI:
			return lv <= rv, nil
		case token.TESTGTI:
			return lv > rv, nil
		default: // TESTGEI
			return lv >= rv, nil
		}

	case token.TESTNT, token.TESTOT, token.TESTEF:
		lp, err := expand.Literal(cfg, b.X)
		if err != nil {
			return false, err
		}
		rp, err := expand.Literal(cfg, b.Y)
		if err != nil {
			return false, err
		}
		lpath := vfs.ResolvePath(r.cwd(), lp)
		rpath := vfs.ResolvePath(r.cwd(), rp)
		lm, lok := r.statFollow(lpath)
		rm, rok := r.statFollow(rpath)
		switch b.Op {
		case token.TESTNT:
			return lok && (!rok || lm.Mtime.After(rm.Mtime)), nil
		case token.TESTOT:
			return rok && (!lok || rm.Mtime.After(lm.Mtime)), nil
		default: // TESTEF
			return lok && rok && lpath == rpath, nil
		}
	}
	return false, nil
}

func arithLiteral(cfg *expand.Config, w ast.Word) (int64, error) {
	text, err := expand.Literal(cfg, w)
	if err != nil {
		return 0, err
	}
	x, err := parser.ParseArith([]byte(text))
	if err != nil {
		return 0, err
	}
	return expand.Arith(cfg, x)
}

// matchCasePattern matches a case-arm/`[[ == ]]` glob pattern against a
// subject string in full (not path-component-aware the way filename
// globbing is), the same two-step pattern.Regexp→regexp.Compile this
// package's glob.go uses for pathname expansion.
func matchCasePattern(pat, subject string) (bool, error) {
	if !pattern.HasMeta(pat, 0) {
		return pat == subject, nil
	}
	reSrc, err := pattern.Regexp(pat, pattern.EntireString)
	if err != nil {
		return false, err
	}
	re, err := regexp.Compile(reSrc)
	if err != nil {
		return false, err
	}
	return re.MatchString(subject), nil
}

// caseCmd evaluates `case word in ... esac`, honoring the three arm
// terminators: `;;` stops, `;&` forces the next arm's body to run
// without testing its patterns, `;;&` resumes normal pattern testing at
// the next arm after running this one.
func (r *Runner) caseCmd(x *ast.Case) {
	cfg := r.expandConfig()
	subject, err := expand.Literal(cfg, x.Word)
	if err != nil {
		r.writeOut(r.stderr, err.Error()+"\n")
		r.exit = 1
		r.Scope.SetLastStatus(1)
		return
	}

	forceNext := false
	ran := false
	for _, arm := range x.Arms {
		if r.stop() {
			return
		}
		matched := forceNext
		if !matched {
			for _, pw := range arm.Patterns {
				pat, perr := expand.ExpandPattern(cfg, pw)
				if perr != nil {
					continue
				}
				if ok, _ := matchCasePattern(pat, subject); ok {
					matched = true
					break
				}
			}
		}
		if !matched {
			forceNext = false
			continue
		}
		ran = true
		r.list(arm.Body)
		if r.stop() {
			return
		}
		switch arm.Term {
		case ast.CaseFallThru:
			forceNext = true
			continue
		case ast.CaseContinue:
			forceNext = false
			continue
		default: // CaseBreak
			return
		}
	}
	if !ran {
		r.exit = 0
		r.Scope.SetLastStatus(0)
	}
}
