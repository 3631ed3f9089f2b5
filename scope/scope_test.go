package scope_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/everruns/bashkit-sub001/scope"
)

func TestSetGetGlobal(t *testing.T) {
	c := qt.New(t)
	s := scope.New("test.sh", 1)
	s.Set("X", scope.NewScalar("1"))
	v, ok := s.Get("X")
	c.Assert(ok, qt.IsTrue)
	c.Assert(v.Value.String(), qt.Equals, "1")
}

func TestLocalShadowsGlobal(t *testing.T) {
	c := qt.New(t)
	s := scope.New("test.sh", 1)
	s.Set("X", scope.NewScalar("global"))
	s.Push()
	s.Declare("X", scope.NewScalar("local"), 0)
	v, _ := s.Get("X")
	c.Assert(v.Value.String(), qt.Equals, "local")
	s.Pop()
	v, _ = s.Get("X")
	c.Assert(v.Value.String(), qt.Equals, "global")
}

func TestSetWritesToLocalFrameOnceDeclared(t *testing.T) {
	c := qt.New(t)
	s := scope.New("test.sh", 1)
	s.Push()
	s.Declare("Y", scope.NewScalar("first"), 0)
	s.Set("Y", scope.NewScalar("second"))
	v, _ := s.Get("Y")
	c.Assert(v.Value.String(), qt.Equals, "second")
	s.Pop()
	_, ok := s.Get("Y")
	c.Assert(ok, qt.IsFalse)
}

func TestExportedUnionAcrossFrames(t *testing.T) {
	c := qt.New(t)
	s := scope.New("test.sh", 1)
	s.Set("GVAR", scope.NewScalar("g"))
	s.SetFlags("GVAR", scope.FlagExported)
	s.Push()
	s.Declare("LVAR", scope.NewScalar("l"), scope.FlagExported)
	exp := s.Exported()
	c.Assert(exp["GVAR"], qt.Equals, "g")
	c.Assert(exp["LVAR"], qt.Equals, "l")
}

func TestUnsetRemovesFromOwningFrame(t *testing.T) {
	c := qt.New(t)
	s := scope.New("test.sh", 1)
	s.Set("X", scope.NewScalar("1"))
	s.Unset("X")
	_, ok := s.Get("X")
	c.Assert(ok, qt.IsFalse)
}

func TestPositionalAndShift(t *testing.T) {
	c := qt.New(t)
	s := scope.New("test.sh", 1)
	s.SetPositional([]string{"a", "b", "c"})
	c.Assert(s.Positional(), qt.DeepEquals, []string{"a", "b", "c"})
	c.Assert(s.ShiftPositional(2), qt.IsTrue)
	c.Assert(s.Positional(), qt.DeepEquals, []string{"c"})
}

func TestFuncnameStack(t *testing.T) {
	c := qt.New(t)
	s := scope.New("test.sh", 1)
	s.PushFuncname("outer")
	s.PushFuncname("inner")
	c.Assert(s.Funcname(), qt.DeepEquals, []string{"inner", "outer"})
	s.PopFuncname()
	c.Assert(s.Funcname(), qt.DeepEquals, []string{"outer"})
}

func TestCloneIsolatesArrayStorage(t *testing.T) {
	c := qt.New(t)
	s := scope.New("test.sh", 1)
	arr := scope.NewIndexedArray()
	arr.SetIndex(0, "orig")
	s.Set("ARR", arr)

	clone := s.Clone()
	cv, _ := clone.Get("ARR")
	cv.Value.SetIndex(0, "mutated")
	clone.Set("ARR", cv.Value)

	orig, _ := s.Get("ARR")
	c.Assert(orig.Value.Index[0], qt.Equals, "orig")
}

func TestCloneIsolatesScalars(t *testing.T) {
	c := qt.New(t)
	s := scope.New("test.sh", 1)
	s.SetLastStatus(7)
	s.SetLastBackgroundPID(3)
	clone := s.Clone()
	clone.SetLastStatus(99)
	clone.SetLastBackgroundPID(100)
	c.Assert(s.LastStatus(), qt.Equals, 7)
	c.Assert(s.LastBackgroundPID(), qt.Equals, 3)
	c.Assert(clone.LastStatus(), qt.Equals, 99)
}

func TestNextRandomDeterministic(t *testing.T) {
	c := qt.New(t)
	a := scope.New("test.sh", 1)
	b := scope.New("test.sh", 1)
	for i := 0; i < 5; i++ {
		c.Assert(a.NextRandom(), qt.Equals, b.NextRandom())
	}
}
