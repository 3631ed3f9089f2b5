package expand

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/scope"
	"github.com/everruns/bashkit-sub001/token"
)

// maxNameRefDepth bounds the "a variable whose value is itself a valid
// variable name is evaluated recursively" chase bash does inside
// arithmetic contexts (`x=y; y=2; echo $((x))` => 2), the same guard
// the teacher's expand/arith.go keeps against a name-reference cycle.
const maxNameRefDepth = 8

// base64Digits is bash's digit alphabet for `base#digits` literals,
// supporting bases 2 through 64.
const base64Digits = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ@_"

// Arith evaluates an arithmetic expression, implementing the
// recursive-descent-over-the-AST pattern of the teacher's own
// expand/arith.go (Arithm), adapted to ast.ArithExpr/token.Kind and to
// spec.md §4.E's "values are 64-bit signed integers" (the teacher uses
// plain int).
func Arith(cfg *Config, expr ast.ArithExpr) (int64, error) {
	switch e := expr.(type) {
	case nil:
		return 0, nil
	case *ast.ArithWord:
		return arithWordValue(cfg, e.Value)
	case *ast.ArithGroup:
		return Arith(cfg, e.X)
	case *ast.ArithComma:
		if _, err := Arith(cfg, e.X); err != nil {
			return 0, err
		}
		return Arith(cfg, e.Y)
	case *ast.ArithParamExp:
		s, err := paramScalar(cfg, e.X)
		if err != nil {
			return 0, err
		}
		return parseArithNumber(s)
	case *ast.ArithUnary:
		return arithUnary(cfg, e)
	case *ast.ArithBinary:
		return arithBinary(cfg, e)
	case *ast.ArithAssign:
		return arithAssign(cfg, e)
	case *ast.ArithTernary:
		c, err := Arith(cfg, e.Cond)
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return Arith(cfg, e.Then)
		}
		return Arith(cfg, e.Else)
	default:
		return 0, fmt.Errorf("expand: unsupported arithmetic node %T", expr)
	}
}

func oneIf(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func arithWordValue(cfg *Config, s string) (int64, error) {
	if isArithName(s) {
		return varArith(cfg, s, 0)
	}
	return parseArithNumber(s)
}

func isArithName(s string) bool {
	if s == "" {
		return false
	}
	if !(s[0] == '_' || s[0] >= 'a' && s[0] <= 'z' || s[0] >= 'A' && s[0] <= 'Z') {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func varArith(cfg *Config, name string, depth int) (int64, error) {
	if depth > maxNameRefDepth {
		return 0, fmt.Errorf("expand: name reference loop evaluating %q", name)
	}
	v, ok := cfg.Scope.Get(name)
	if !ok {
		return 0, nil
	}
	s := strings.TrimSpace(v.Value.String())
	if s == "" {
		return 0, nil
	}
	if isArithName(s) && s != name {
		return varArith(cfg, s, depth+1)
	}
	return parseArithNumber(s)
}

// parseArithNumber parses a decimal, 0x hex, leading-0 octal, or
// `base#digits` (base 2-64) integer literal, the number-literal forms
// spec.md §4.E names for `(( ))`.
func parseArithNumber(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	var n int64
	var err error
	switch {
	case s == "":
		return 0, fmt.Errorf("expand: empty arithmetic operand")
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		n, err = strconv.ParseInt(s[2:], 16, 64)
	case strings.Contains(s, "#"):
		baseStr, digits, _ := strings.Cut(s, "#")
		base, berr := strconv.Atoi(baseStr)
		if berr != nil || base < 2 || base > 64 {
			return 0, fmt.Errorf("expand: invalid arithmetic base %q", baseStr)
		}
		n, err = parseBaseN(digits, base)
	case len(s) > 1 && s[0] == '0':
		n, err = strconv.ParseInt(s, 8, 64)
	default:
		n, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("expand: invalid arithmetic value %q: %w", s, err)
	}
	if neg {
		n = -n
	}
	return n, nil
}

func parseBaseN(s string, base int) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("expand: empty based-number digits")
	}
	var n int64
	for _, r := range s {
		idx := strings.IndexRune(base64Digits, r)
		if idx < 0 || idx >= base {
			return 0, fmt.Errorf("expand: digit %q invalid for base %d", r, base)
		}
		n = n*int64(base) + int64(idx)
	}
	return n, nil
}

func arithUnary(cfg *Config, u *ast.ArithUnary) (int64, error) {
	switch u.Op {
	case token.INCR, token.DECR:
		old, err := Arith(cfg, u.X)
		if err != nil {
			return 0, err
		}
		delta := int64(1)
		if u.Op == token.DECR {
			delta = -1
		}
		updated := old + delta
		if err := arithStore(cfg, u.X, updated); err != nil {
			return 0, err
		}
		if u.Postfix {
			return old, nil
		}
		return updated, nil
	case token.NOT:
		v, err := Arith(cfg, u.X)
		if err != nil {
			return 0, err
		}
		return oneIf(v == 0), nil
	case token.BWNOT:
		v, err := Arith(cfg, u.X)
		if err != nil {
			return 0, err
		}
		return ^v, nil
	case token.SUB:
		v, err := Arith(cfg, u.X)
		if err != nil {
			return 0, err
		}
		return -v, nil
	case token.ADD:
		return Arith(cfg, u.X)
	}
	return 0, fmt.Errorf("expand: unsupported unary arithmetic operator")
}

func arithBinary(cfg *Config, b *ast.ArithBinary) (int64, error) {
	// && and || short-circuit, so the right side must not be evaluated
	// (and must not fire any side-effecting assignment) unless needed.
	switch b.Op {
	case token.LAND:
		l, err := Arith(cfg, b.X)
		if err != nil {
			return 0, err
		}
		if l == 0 {
			return 0, nil
		}
		r, err := Arith(cfg, b.Y)
		if err != nil {
			return 0, err
		}
		return oneIf(r != 0), nil
	case token.LOR:
		l, err := Arith(cfg, b.X)
		if err != nil {
			return 0, err
		}
		if l != 0 {
			return 1, nil
		}
		r, err := Arith(cfg, b.Y)
		if err != nil {
			return 0, err
		}
		return oneIf(r != 0), nil
	}
	l, err := Arith(cfg, b.X)
	if err != nil {
		return 0, err
	}
	r, err := Arith(cfg, b.Y)
	if err != nil {
		return 0, err
	}
	return binArith(b.Op, l, r)
}

func binArith(op token.Kind, l, r int64) (int64, error) {
	switch op {
	case token.ADD:
		return l + r, nil
	case token.SUB:
		return l - r, nil
	case token.MUL:
		return l * r, nil
	case token.QUO:
		if r == 0 {
			return 0, fmt.Errorf("expand: division by zero")
		}
		return l / r, nil
	case token.REM:
		if r == 0 {
			return 0, fmt.Errorf("expand: modulo by zero")
		}
		return l % r, nil
	case token.POW:
		return intPow(l, r), nil
	case token.BWAND:
		return l & r, nil
	case token.BWOR:
		return l | r, nil
	case token.BWXOR:
		return l ^ r, nil
	case token.SHL2:
		return l << uint64(r), nil
	case token.SHR2:
		return l >> uint64(r), nil
	case token.EQL:
		return oneIf(l == r), nil
	case token.NEQ:
		return oneIf(l != r), nil
	case token.LSS2:
		return oneIf(l < r), nil
	case token.GTR2:
		return oneIf(l > r), nil
	case token.LEQ:
		return oneIf(l <= r), nil
	case token.GEQ:
		return oneIf(l >= r), nil
	}
	return 0, fmt.Errorf("expand: unsupported binary arithmetic operator")
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	var result int64 = 1
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func arithAssign(cfg *Config, a *ast.ArithAssign) (int64, error) {
	if a.Op == token.ASSGN {
		v, err := Arith(cfg, a.Y)
		if err != nil {
			return 0, err
		}
		if err := arithStore(cfg, a.X, v); err != nil {
			return 0, err
		}
		return v, nil
	}
	old, err := Arith(cfg, a.X)
	if err != nil {
		return 0, err
	}
	rhs, err := Arith(cfg, a.Y)
	if err != nil {
		return 0, err
	}
	binOp, ok := compoundBinOp(a.Op)
	if !ok {
		return 0, fmt.Errorf("expand: unsupported compound assignment operator")
	}
	updated, err := binArith(binOp, old, rhs)
	if err != nil {
		return 0, err
	}
	if err := arithStore(cfg, a.X, updated); err != nil {
		return 0, err
	}
	return updated, nil
}

func compoundBinOp(op token.Kind) (token.Kind, bool) {
	switch op {
	case token.ADDASS:
		return token.ADD, true
	case token.SUBASS:
		return token.SUB, true
	case token.MULASS:
		return token.MUL, true
	case token.QUOASS:
		return token.QUO, true
	case token.REMASS:
		return token.REM, true
	case token.ANDASS:
		return token.BWAND, true
	case token.ORASS:
		return token.BWOR, true
	case token.XORASS:
		return token.BWXOR, true
	case token.SHLASS:
		return token.SHL2, true
	case token.SHRASS:
		return token.SHR2, true
	}
	return 0, false
}

// arithStore writes v into the variable an lvalue arithmetic
// expression names, the counterpart of the teacher's envSet call in
// its UnaryArithm/BinaryArithm assignment handling.
func arithStore(cfg *Config, target ast.ArithExpr, v int64) error {
	switch t := target.(type) {
	case *ast.ArithWord:
		if !isArithName(t.Value) {
			return fmt.Errorf("expand: cannot assign to %q", t.Value)
		}
		cfg.Scope.Set(t.Value, scope.NewScalar(strconv.FormatInt(v, 10)))
		return nil
	case *ast.ArithParamExp:
		return paramArithStore(cfg, t.X, v)
	case *ast.ArithGroup:
		return arithStore(cfg, t.X, v)
	}
	return fmt.Errorf("expand: invalid assignment target in arithmetic expression")
}
