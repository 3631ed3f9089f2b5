package expand

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/scope"
)

func scalarPE(name string) *ast.ParamExp { return &ast.ParamExp{Short: true, Param: name} }

func TestParamScalarLookup(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Scope.Set("x", scope.NewScalar("hello"))
	got, err := paramScalar(cfg, scalarPE("x"))
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "hello")
}

func TestParamDefaultUnset(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	pe := &ast.ParamExp{Param: "missing", Exp: &ast.Expansion{Op: ast.DefaultUnset, Word: litWord("fallback")}}
	got, err := paramScalar(cfg, pe)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "fallback")
}

func TestParamDefaultUnsetOrNullIgnoresEmptyWithBareForm(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Scope.Set("x", scope.NewScalar(""))
	// bare "-" only triggers on unset, not on empty/null.
	pe := &ast.ParamExp{Param: "x", Exp: &ast.Expansion{Op: ast.DefaultUnsetOrNull, Word: litWord("fallback")}}
	got, err := paramScalar(cfg, pe)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "")
}

func TestParamDefaultColonFormTriggersOnNull(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Scope.Set("x", scope.NewScalar(""))
	pe := &ast.ParamExp{Param: "x", Exp: &ast.Expansion{Op: ast.DefaultUnset, Word: litWord("fallback")}}
	got, err := paramScalar(cfg, pe)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "fallback")
}

func TestParamAssignUnset(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	pe := &ast.ParamExp{Param: "x", Exp: &ast.Expansion{Op: ast.AssignUnset, Word: litWord("assigned")}}
	got, err := paramScalar(cfg, pe)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "assigned")
	v, ok := cfg.Scope.Get("x")
	c.Assert(ok, qt.IsTrue)
	c.Assert(v.Value.String(), qt.Equals, "assigned")
}

func TestParamAlternateUnset(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Scope.Set("x", scope.NewScalar("set"))
	pe := &ast.ParamExp{Param: "x", Exp: &ast.Expansion{Op: ast.AlternateUnset, Word: litWord("alt")}}
	got, err := paramScalar(cfg, pe)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "alt")

	pe2 := &ast.ParamExp{Param: "missing", Exp: &ast.Expansion{Op: ast.AlternateUnset, Word: litWord("alt")}}
	got2, err := paramScalar(cfg, pe2)
	c.Assert(err, qt.IsNil)
	c.Assert(got2, qt.Equals, "")
}

func TestParamErrorUnset(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	pe := &ast.ParamExp{Param: "missing", Exp: &ast.Expansion{Op: ast.ErrorUnset, Word: litWord("must be set")}}
	_, err := paramScalar(cfg, pe)
	c.Assert(err, qt.ErrorMatches, "missing: must be set")
}

func TestParamLength(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Scope.Set("x", scope.NewScalar("hello"))
	pe := &ast.ParamExp{Param: "x", Length: true}
	got, err := paramScalar(cfg, pe)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "5")
}

func TestParamArrayAtVsStarJoining(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	arr := scope.NewIndexedArray()
	arr.SetIndex(0, "a")
	arr.SetIndex(1, "b")
	arr.SetIndex(2, "c")
	cfg.Scope.Set("arr", arr)

	atIdx := litWord("@")
	atExp := &ast.ParamExp{Param: "arr", Index: &atIdx}
	chunks, err := paramFields(cfg, atExp, false)
	c.Assert(err, qt.IsNil)
	var fields []string
	for _, f := range splitWord(chunks, " \t\n") {
		fields = append(fields, literalValue(f))
	}
	c.Assert(fields, qt.DeepEquals, []string{"a", "b", "c"})

	starIdx := litWord("*")
	starExp := &ast.ParamExp{Param: "arr", Index: &starIdx}
	joined, err := paramScalar(cfg, starExp)
	c.Assert(err, qt.IsNil)
	c.Assert(joined, qt.Equals, "a b c")
}

func TestParamSliceScalar(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Scope.Set("x", scope.NewScalar("hello world"))
	pe := &ast.ParamExp{Param: "x", Slice: &ast.Slice{
		Offset: &ast.ArithWord{Value: "6"},
	}}
	got, err := paramScalar(cfg, pe)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "world")
}

func TestParamSliceNegativeOffset(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Scope.Set("x", scope.NewScalar("hello world"))
	pe := &ast.ParamExp{Param: "x", Slice: &ast.Slice{
		Offset: &ast.ArithWord{Value: "-5"},
	}}
	got, err := paramScalar(cfg, pe)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "world")
}

func TestParamRemoveLargestSmallestSuffix(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Scope.Set("x", scope.NewScalar("a.b.c"))
	smallest := &ast.ParamExp{Param: "x", Exp: &ast.Expansion{Op: ast.RemSmallestSuffix, Word: litWord("*.*")}}
	got, err := paramScalar(cfg, smallest)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "a.b")

	largest := &ast.ParamExp{Param: "x", Exp: &ast.Expansion{Op: ast.RemLargestSuffix, Word: litWord(".*")}}
	got2, err := paramScalar(cfg, largest)
	c.Assert(err, qt.IsNil)
	c.Assert(got2, qt.Equals, "a")
}

func TestParamRemoveLargestSmallestPrefix(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Scope.Set("x", scope.NewScalar("/usr/local/bin"))
	smallest := &ast.ParamExp{Param: "x", Exp: &ast.Expansion{Op: ast.RemSmallestPrefix, Word: litWord("*/")}}
	got, err := paramScalar(cfg, smallest)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "usr/local/bin")

	largest := &ast.ParamExp{Param: "x", Exp: &ast.Expansion{Op: ast.RemLargestPrefix, Word: litWord("*/")}}
	got2, err := paramScalar(cfg, largest)
	c.Assert(err, qt.IsNil)
	c.Assert(got2, qt.Equals, "bin")
}

func TestParamReplaceAll(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Scope.Set("x", scope.NewScalar("a-b-c"))
	pe := &ast.ParamExp{Param: "x", Repl: &ast.Replace{
		Orig: litWord("-"),
		With: litWord("_"),
		All:  true,
	}}
	got, err := paramScalar(cfg, pe)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "a_b_c")
}

func TestParamReplaceFirstOnly(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Scope.Set("x", scope.NewScalar("a-b-c"))
	pe := &ast.ParamExp{Param: "x", Repl: &ast.Replace{
		Orig: litWord("-"),
		With: litWord("_"),
	}}
	got, err := paramScalar(cfg, pe)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "a_b-c")
}

func TestParamCaseChange(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Scope.Set("x", scope.NewScalar("hello world"))
	upperAll := &ast.ParamExp{Param: "x", Exp: &ast.Expansion{Op: ast.UpperAll}}
	got, err := paramScalar(cfg, upperAll)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "HELLO WORLD")

	upperFirstPE := &ast.ParamExp{Param: "x", Exp: &ast.Expansion{Op: ast.UpperFirst}}
	got2, err := paramScalar(cfg, upperFirstPE)
	c.Assert(err, qt.IsNil)
	c.Assert(got2, qt.Equals, "Hello world")
}

func TestParamTransformQuote(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	cfg.Scope.Set("x", scope.NewScalar("it's"))
	pe := &ast.ParamExp{Param: "x", Transform: 'Q'}
	got, err := paramScalar(cfg, pe)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, `'it'\''s'`)
}

func TestParamArithStoreScalarAndArray(t *testing.T) {
	c := qt.New(t)
	cfg := newTestConfig()
	c.Assert(paramArithStore(cfg, &ast.ParamExp{Param: "x"}, 42), qt.IsNil)
	v, _ := cfg.Scope.Get("x")
	c.Assert(v.Value.String(), qt.Equals, "42")

	idx := litWord("2")
	c.Assert(paramArithStore(cfg, &ast.ParamExp{Param: "arr", Index: &idx}, 7), qt.IsNil)
	av, ok := cfg.Scope.Get("arr")
	c.Assert(ok, qt.IsTrue)
	c.Assert(av.Value.Index[2], qt.Equals, "7")
}
