package expand

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/parser"
	"github.com/everruns/bashkit-sub001/pattern"
	"github.com/everruns/bashkit-sub001/scope"
)

// resolved is the intermediate value a ParamExp resolves to before its
// trailing operator (Exp/Repl/case-change/Transform/Slice) is applied:
// either a single scalar or an array's elements, distinguishing "@"
// iteration (each element its own field) from "*" (joined by IFS[0]).
type resolved struct {
	scalar  string
	elems   []string
	isArray bool
	atStyle bool
	unset   bool
}

func (r resolved) isNull() bool {
	if r.isArray {
		return len(r.elems) == 0
	}
	return r.scalar == ""
}

// paramScalar evaluates pe to a single joined string, the form
// arithmetic contexts and non-array assignment targets need.
func paramScalar(cfg *Config, pe *ast.ParamExp) (string, error) {
	chunks, err := paramFields(cfg, pe, false)
	if err != nil {
		return "", err
	}
	return literalValue(chunks), nil
}

// paramFields evaluates a full `${...}`/`$name`, returning its chunk
// list: for an "@"-style array/positional expansion this contains
// boundary markers separating elements so that splitWord (or, for a
// quoted context, the caller) treats them as independent fields.
func paramFields(cfg *Config, pe *ast.ParamExp, quoted bool) ([]fieldPart, error) {
	if pe.Indirect && pe.NameList != ast.NameListNone {
		return nameListFields(cfg, pe, quoted)
	}

	name := pe.Param
	if pe.Indirect {
		target, err := resolveScalarName(cfg, name)
		if err != nil {
			return nil, err
		}
		name = target
	}

	r, err := resolveBase(cfg, name, pe.Index)
	if err != nil {
		return nil, err
	}

	if pe.Length {
		n := 0
		if r.isArray {
			n = len(r.elems)
		} else {
			n = len([]rune(r.scalar))
		}
		return []fieldPart{chunkFor(strconv.Itoa(n), quoted)}, nil
	}

	if pe.Exp != nil {
		switch pe.Exp.Op {
		case ast.DefaultUnset, ast.DefaultUnsetOrNull,
			ast.AssignUnset, ast.AssignUnsetOrNull,
			ast.AlternateUnset, ast.AlternateUnsetOrNull,
			ast.ErrorUnset, ast.ErrorUnsetOrNull:
			return paramExpOp(cfg, pe, r, quoted)
		}
	}

	r, err = applySlice(cfg, pe.Slice, r)
	if err != nil {
		return nil, err
	}
	r, err = applyReplace(cfg, pe.Repl, r)
	if err != nil {
		return nil, err
	}
	r, err = applyRemoveAffix(cfg, pe.Exp, r)
	if err != nil {
		return nil, err
	}
	r = applyCaseOp(pe.Exp, r)
	r = applyTransform(pe.Transform, name, r)

	return resolvedToChunks(cfg, r, quoted), nil
}

func chunkFor(s string, quoted bool) fieldPart {
	if quoted {
		return quotedLit(s)
	}
	return lit(s)
}

// resolvedToChunks turns a resolved value into chunks, inserting
// boundary markers between array elements for "@" style so the
// splitting step treats them as independent fields (spec.md §4.E: "an
// unquoted or double-quoted '$@'/'${arr[@]}' always yields one field
// per element").
func resolvedToChunks(cfg *Config, r resolved, quoted bool) []fieldPart {
	if !r.isArray {
		return []fieldPart{chunkFor(r.scalar, quoted)}
	}
	if !r.atStyle {
		return []fieldPart{chunkFor(strings.Join(r.elems, starJoiner(cfg)), quoted)}
	}
	if len(r.elems) == 0 {
		return nil
	}
	out := make([]fieldPart, 0, len(r.elems)*2-1)
	for i, e := range r.elems {
		if i > 0 {
			out = append(out, boundaryMark())
		}
		out = append(out, chunkFor(e, quoted))
	}
	return out
}

// starJoiner is the separator "$*"/non-"@" array expansion joins
// elements with: the first character of IFS, or a plain space when IFS
// is unset or empty (bash's default-IFS behavior).
func starJoiner(cfg *Config) string {
	ifs := cfg.ifs()
	if ifs == "" {
		return " "
	}
	return string([]rune(ifs)[0])
}

func resolveScalarName(cfg *Config, name string) (string, error) {
	r, err := resolveBase(cfg, name, nil)
	if err != nil {
		return "", err
	}
	return r.scalar, nil
}

// resolveBase resolves the base value of a parameter, before any
// trailing operator, handling the special parameters of spec.md §3
// ($@ $* $# $? $$ $! $- $0 and positional $N) as well as plain scalar
// and array variables with an optional `[index]`/`[@]`/`[*]` subscript.
func resolveBase(cfg *Config, name string, index *ast.Word) (resolved, error) {
	switch name {
	case "@", "*":
		pos := cfg.Scope.Positional()
		return resolved{elems: append([]string{}, pos...), isArray: true, atStyle: name == "@"}, nil
	case "#":
		return resolved{scalar: strconv.Itoa(len(cfg.Scope.Positional()))}, nil
	case "?":
		return resolved{scalar: strconv.Itoa(cfg.Scope.LastStatus())}, nil
	case "$":
		return resolved{scalar: strconv.Itoa(cfg.Scope.PID())}, nil
	case "!":
		pid := cfg.Scope.LastBackgroundPID()
		if pid == 0 {
			return resolved{unset: true}, nil
		}
		return resolved{scalar: strconv.Itoa(pid)}, nil
	case "-":
		return resolved{scalar: ""}, nil
	case "0":
		return resolved{scalar: cfg.Scope.ScriptName()}, nil
	}
	if isAllDigits(name) {
		n, _ := strconv.Atoi(name)
		pos := cfg.Scope.Positional()
		if n == 0 {
			return resolved{scalar: cfg.Scope.ScriptName()}, nil
		}
		if n < 1 || n > len(pos) {
			return resolved{unset: true}, nil
		}
		return resolved{scalar: pos[n-1]}, nil
	}

	v, ok := cfg.Scope.Get(name)
	if !ok {
		if index != nil {
			if idx, err := literalIndexText(cfg, *index); err == nil && (idx == "@" || idx == "*") {
				return resolved{isArray: true, atStyle: idx == "@"}, nil
			}
		}
		return resolved{unset: true}, nil
	}

	if index == nil {
		return resolved{scalar: v.Value.String()}, nil
	}
	idx, err := literalIndexText(cfg, *index)
	if err != nil {
		return resolved{}, err
	}
	if idx == "@" || idx == "*" {
		return resolved{elems: v.Value.Elements(), isArray: true, atStyle: idx == "@"}, nil
	}
	if v.Value.Kind == scope.KindAssocArray {
		s, present := v.Value.Assoc[idx]
		return resolved{scalar: s, unset: !present}, nil
	}
	n, err := arithIndexValue(cfg, idx)
	if err != nil {
		return resolved{}, err
	}
	s, present := v.Value.Index[int(n)]
	return resolved{scalar: s, unset: !present}, nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func literalIndexText(cfg *Config, w ast.Word) (string, error) {
	return Literal(cfg, w)
}

func arithIndexValue(cfg *Config, text string) (int64, error) {
	x, err := parser.ParseArith([]byte(text))
	if err != nil {
		return 0, fmt.Errorf("expand: bad array subscript %q: %w", text, err)
	}
	return Arith(cfg, x)
}

func nameListFields(cfg *Config, pe *ast.ParamExp, quoted bool) ([]fieldPart, error) {
	var names []string
	for _, n := range cfg.Scope.Names() {
		if strings.HasPrefix(n, pe.Param) {
			names = append(names, n)
		}
	}
	r := resolved{elems: names, isArray: true, atStyle: pe.NameList == ast.NameListAt}
	return resolvedToChunks(cfg, r, quoted), nil
}

func paramExpOp(cfg *Config, pe *ast.ParamExp, r resolved, quoted bool) ([]fieldPart, error) {
	op := pe.Exp.Op
	colonForm := op == ast.DefaultUnset || op == ast.AssignUnset || op == ast.AlternateUnset || op == ast.ErrorUnset
	trigger := r.unset || (colonForm && r.isNull())
	switch op {
	case ast.DefaultUnset, ast.DefaultUnsetOrNull:
		if trigger {
			return expandWordFields(cfg, pe.Exp.Word, quoted)
		}
		return resolvedToChunks(cfg, r, quoted), nil
	case ast.AssignUnset, ast.AssignUnsetOrNull:
		if trigger {
			val, err := Literal(cfg, pe.Exp.Word)
			if err != nil {
				return nil, err
			}
			cfg.Scope.Set(pe.Param, scope.NewScalar(val))
			return []fieldPart{chunkFor(val, quoted)}, nil
		}
		return resolvedToChunks(cfg, r, quoted), nil
	case ast.AlternateUnset, ast.AlternateUnsetOrNull:
		if trigger {
			return nil, nil
		}
		return expandWordFields(cfg, pe.Exp.Word, quoted)
	case ast.ErrorUnset, ast.ErrorUnsetOrNull:
		if trigger {
			msg, _ := Literal(cfg, pe.Exp.Word)
			if msg == "" {
				msg = "parameter null or not set"
			}
			return nil, fmt.Errorf("%s: %s", pe.Param, msg)
		}
		return resolvedToChunks(cfg, r, quoted), nil
	}
	return resolvedToChunks(cfg, r, quoted), nil
}

// applySlice implements ${x:offset:length}. For a scalar it substrings
// by rune; for an array subscript ("${arr[@]:off:len}") it selects a
// sub-range of elements instead, matching bash's array-slice reading
// of the same syntax.
func applySlice(cfg *Config, sl *ast.Slice, r resolved) (resolved, error) {
	if sl == nil {
		return r, nil
	}
	total := len(r.elems)
	if !r.isArray {
		total = len([]rune(r.scalar))
	}
	off, err := Arith(cfg, sl.Offset)
	if err != nil {
		return r, err
	}
	length := int64(total)
	haveLen := sl.Length != nil
	if haveLen {
		length, err = Arith(cfg, sl.Length)
		if err != nil {
			return r, err
		}
	}
	start, count := sliceBounds(total, off, length, haveLen)
	if r.isArray {
		end := start + count
		if end > len(r.elems) {
			end = len(r.elems)
		}
		if start > len(r.elems) {
			start = len(r.elems)
		}
		r.elems = append([]string{}, r.elems[start:end]...)
		return r, nil
	}
	rs := []rune(r.scalar)
	end := start + count
	if end > len(rs) {
		end = len(rs)
	}
	if start > len(rs) {
		start = len(rs)
	}
	r.scalar = string(rs[start:end])
	return r, nil
}

// sliceBounds converts bash's (possibly negative) offset/length pair
// into a clamped [start, count) pair over a sequence of the given
// total length. A negative offset counts from the end; a negative
// length (only meaningful when explicitly given) means "stop that many
// from the end" rather than "take that many".
func sliceBounds(total int, offset, length int64, haveLen bool) (int, int) {
	off := int(offset)
	if off < 0 {
		off += total
		if off < 0 {
			off = 0
		}
	}
	if off > total {
		off = total
	}
	if !haveLen {
		return off, total - off
	}
	n := int(length)
	if n < 0 {
		end := total + n
		if end < off {
			end = off
		}
		return off, end - off
	}
	if off+n > total {
		n = total - off
	}
	return off, n
}

// applyReplace implements the ${x/pat/repl} family.
func applyReplace(cfg *Config, repl *ast.Replace, r resolved) (resolved, error) {
	if repl == nil {
		return r, nil
	}
	if r.isArray {
		out := make([]string, len(r.elems))
		for i, e := range r.elems {
			v, err := replaceOne(cfg, repl, e)
			if err != nil {
				return r, err
			}
			out[i] = v
		}
		r.elems = out
		return r, nil
	}
	v, err := replaceOne(cfg, repl, r.scalar)
	if err != nil {
		return r, err
	}
	r.scalar = v
	return r, nil
}

func replaceOne(cfg *Config, repl *ast.Replace, s string) (string, error) {
	patSrc, err := patternTextOf(cfg, repl.Orig)
	if err != nil {
		return "", err
	}
	with, err := Literal(cfg, repl.With)
	if err != nil {
		return "", err
	}
	if patSrc == "" {
		return s, nil
	}
	reSrc, err := pattern.Regexp(patSrc, 0)
	if err != nil {
		return "", fmt.Errorf("expand: bad pattern %q: %w", patSrc, err)
	}
	switch {
	case repl.AtFront:
		reSrc = "^(?:" + reSrc + ")"
	case repl.AtBack:
		reSrc = "(?:" + reSrc + ")$"
	}
	re, err := regexp.Compile(reSrc)
	if err != nil {
		return "", fmt.Errorf("expand: bad pattern %q: %w", patSrc, err)
	}
	if repl.All {
		return re.ReplaceAllString(s, regexp.QuoteMeta(with)), nil
	}
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s, nil
	}
	return s[:loc[0]] + with + s[loc[1]:], nil
}

// patternTextOf expands a pattern-position word (quoted parts
// meta-escaped so they never act as wildcards) for the ${x/pat/repl}
// family's pattern operand.
func patternTextOf(cfg *Config, w ast.Word) (string, error) {
	chunks, err := expandWordParts(cfg, w.Parts, false)
	if err != nil {
		return "", err
	}
	return patternText(chunks), nil
}

// applyRemoveAffix implements the ${x#pat}/${x##pat}/${x%pat}/${x%%pat}
// family. Rather than leaning on regexp greediness (Go's RE2 chooses
// leftmost-first, not longest-overall, so a naive anchored match
// cannot tell "largest" from "smallest" apart for a suffix match), it
// brute-forces the split point: for a prefix removal it is the
// latest (largest) or earliest (smallest) end-of-match position that
// still fully matches pat; for a suffix removal, the earliest (largest)
// or latest (smallest) start-of-match position.
func applyRemoveAffix(cfg *Config, exp *ast.Expansion, r resolved) (resolved, error) {
	if exp == nil {
		return r, nil
	}
	var isPrefix, largest bool
	switch exp.Op {
	case ast.RemSmallestPrefix:
		isPrefix, largest = true, false
	case ast.RemLargestPrefix:
		isPrefix, largest = true, true
	case ast.RemSmallestSuffix:
		isPrefix, largest = false, false
	case ast.RemLargestSuffix:
		isPrefix, largest = false, true
	default:
		return r, nil
	}
	patSrc, err := patternTextOf(cfg, exp.Word)
	if err != nil {
		return r, err
	}
	if patSrc == "" {
		return r, nil
	}
	reSrc, err := pattern.Regexp(patSrc, pattern.EntireString)
	if err != nil {
		return r, fmt.Errorf("expand: bad pattern %q: %w", patSrc, err)
	}
	re, err := regexp.Compile(reSrc)
	if err != nil {
		return r, fmt.Errorf("expand: bad pattern %q: %w", patSrc, err)
	}
	strip := func(s string) string {
		if isPrefix {
			e := prefixMatchEnd(re, s, largest)
			if e < 0 {
				return s
			}
			return s[e:]
		}
		b := suffixMatchStart(re, s, largest)
		if b < 0 {
			return s
		}
		return s[:b]
	}
	if r.isArray {
		out := make([]string, len(r.elems))
		for i, e := range r.elems {
			out[i] = strip(e)
		}
		r.elems = out
		return r, nil
	}
	r.scalar = strip(r.scalar)
	return r, nil
}

// prefixMatchEnd finds an end offset e such that s[:e] matches re in
// full, preferring the largest such e (largest == true) or the
// smallest (largest == false).
func prefixMatchEnd(re *regexp.Regexp, s string, largest bool) int {
	if largest {
		for e := len(s); e >= 0; e-- {
			if re.MatchString(s[:e]) {
				return e
			}
		}
		return -1
	}
	for e := 0; e <= len(s); e++ {
		if re.MatchString(s[:e]) {
			return e
		}
	}
	return -1
}

// suffixMatchStart finds a start offset b such that s[b:] matches re
// in full, preferring the smallest such b (largest == true, removing
// the most trailing text) or the largest (largest == false).
func suffixMatchStart(re *regexp.Regexp, s string, largest bool) int {
	if largest {
		for b := 0; b <= len(s); b++ {
			if re.MatchString(s[b:]) {
				return b
			}
		}
		return -1
	}
	for b := len(s); b >= 0; b-- {
		if re.MatchString(s[b:]) {
			return b
		}
	}
	return -1
}

func applyCaseOp(exp *ast.Expansion, r resolved) resolved {
	if exp == nil {
		return r
	}
	var f func(string) string
	switch exp.Op {
	case ast.UpperFirst:
		f = upperFirst
	case ast.UpperAll:
		f = strings.ToUpper
	case ast.LowerFirst:
		f = lowerFirst
	case ast.LowerAll:
		f = strings.ToLower
	default:
		return r
	}
	if r.isArray {
		out := make([]string, len(r.elems))
		for i, e := range r.elems {
			out[i] = f(e)
		}
		r.elems = out
		return r
	}
	r.scalar = f(r.scalar)
	return r
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	rs := []rune(s)
	return strings.ToUpper(string(rs[0])) + string(rs[1:])
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	rs := []rune(s)
	return strings.ToLower(string(rs[0])) + string(rs[1:])
}

func applyTransform(op byte, name string, r resolved) resolved {
	if op == 0 {
		return r
	}
	apply := func(s string) string {
		switch op {
		case 'Q':
			return shellQuote(s)
		case 'U':
			return strings.ToUpper(s)
		case 'u':
			return upperFirst(s)
		case 'L':
			return strings.ToLower(s)
		case 'A':
			return name + "=" + shellQuote(s)
		}
		return s
	}
	if r.isArray {
		out := make([]string, len(r.elems))
		for i, e := range r.elems {
			out[i] = apply(e)
		}
		r.elems = out
		return r
	}
	r.scalar = apply(r.scalar)
	return r
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// paramArithStore writes v into the variable/array-element an
// arithmetic lvalue names, for `$(( x = 5 ))` / `$(( arr[i]++ ))`.
func paramArithStore(cfg *Config, pe *ast.ParamExp, v int64) error {
	s := strconv.FormatInt(v, 10)
	if pe.Index == nil {
		cfg.Scope.Set(pe.Param, scope.NewScalar(s))
		return nil
	}
	idx, err := literalIndexText(cfg, *pe.Index)
	if err != nil {
		return err
	}
	if idx == "@" || idx == "*" {
		return fmt.Errorf("expand: cannot assign to %s[%s]", pe.Param, idx)
	}
	val, ok := cfg.Scope.Get(pe.Param)
	out := val.Value
	if !ok {
		out = scope.NewIndexedArray()
	}
	if out.Kind == scope.KindAssocArray {
		out.SetAssoc(idx, s)
	} else {
		n, err := arithIndexValue(cfg, idx)
		if err != nil {
			return err
		}
		out.SetIndex(int(n), s)
	}
	cfg.Scope.Set(pe.Param, out)
	return nil
}
