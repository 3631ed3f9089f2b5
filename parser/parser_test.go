package parser_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/everruns/bashkit-sub001/ast"
	"github.com/everruns/bashkit-sub001/parser"
)

func parse(t *testing.T, src string) *ast.Script {
	t.Helper()
	c := qt.New(t)
	tree, err := parser.Parse([]byte(src), parser.Options{})
	c.Assert(err, qt.IsNil)
	return tree
}

func onlyStmt(t *testing.T, tree *ast.Script) *ast.Stmt {
	t.Helper()
	c := qt.New(t)
	c.Assert(tree.Body.Items, qt.HasLen, 1)
	return tree.Body.Items[0].Pipe.Elements[0]
}

func TestParseSimpleCommand(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "echo hello world\n")
	stmt := onlyStmt(t, tree)
	simple, ok := stmt.Cmd.(*ast.Simple)
	c.Assert(ok, qt.IsTrue)
	c.Assert(simple.Words, qt.HasLen, 3)
}

func TestParsePrefixAssignment(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "FOO=bar echo $FOO\n")
	stmt := onlyStmt(t, tree)
	c.Assert(stmt.Assigns, qt.HasLen, 1)
	c.Assert(stmt.Assigns[0].Name, qt.Equals, "FOO")
}

func TestParseBareAssignment(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "X=1\n")
	stmt := onlyStmt(t, tree)
	c.Assert(stmt.Assigns, qt.HasLen, 1)
	c.Assert(stmt.Cmd, qt.IsNil)
}

func TestParsePipeline(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "echo hi | read x\n")
	c.Assert(tree.Body.Items, qt.HasLen, 1)
	pipe := tree.Body.Items[0].Pipe
	c.Assert(pipe.Elements, qt.HasLen, 2)
}

func TestParseAndOrShortCircuit(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "true && echo a || echo b\n")
	ao := tree.Body.Items[0]
	c.Assert(ao.Op, qt.Not(qt.Equals), ast.AndOrNone)
}

func TestParseBackgroundSeparator(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "sleep 1 &\n")
	c.Assert(tree.Body.Seps[0], qt.Equals, ast.SepAmp)
}

func TestParseIfElif(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "if true; then echo a; elif false; then echo b; else echo c; fi\n")
	stmt := onlyStmt(t, tree)
	ifCmd, ok := stmt.Cmd.(*ast.If)
	c.Assert(ok, qt.IsTrue)
	c.Assert(ifCmd.Elifs, qt.HasLen, 1)
	c.Assert(ifCmd.Else, qt.Not(qt.IsNil))
}

func TestParseWhileLoop(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "while true; do echo x; done\n")
	stmt := onlyStmt(t, tree)
	_, ok := stmt.Cmd.(*ast.While)
	c.Assert(ok, qt.IsTrue)
}

func TestParseForIn(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "for i in a b c; do echo $i; done\n")
	stmt := onlyStmt(t, tree)
	forCmd, ok := stmt.Cmd.(*ast.For)
	c.Assert(ok, qt.IsTrue)
	c.Assert(forCmd.Name.Value, qt.Equals, "i")
	c.Assert(forCmd.Words, qt.HasLen, 3)
	c.Assert(forCmd.HasIn, qt.IsTrue)
}

func TestParseForBareIteratesPositional(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "for i; do echo $i; done\n")
	stmt := onlyStmt(t, tree)
	forCmd, ok := stmt.Cmd.(*ast.For)
	c.Assert(ok, qt.IsTrue)
	c.Assert(forCmd.HasIn, qt.IsFalse)
	c.Assert(forCmd.Words, qt.HasLen, 0)
}

func TestParseCStyleFor(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "for ((i=0; i<3; i++)); do echo $i; done\n")
	stmt := onlyStmt(t, tree)
	_, ok := stmt.Cmd.(*ast.CStyleFor)
	c.Assert(ok, qt.IsTrue)
}

func TestParseCaseArmsAndTerminators(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "case $x in a) echo a ;; b) echo b ;& c) echo c ;;& *) echo d ;; esac\n")
	stmt := onlyStmt(t, tree)
	caseCmd, ok := stmt.Cmd.(*ast.Case)
	c.Assert(ok, qt.IsTrue)
	c.Assert(caseCmd.Arms, qt.HasLen, 4)
	c.Assert(caseCmd.Arms[0].Term, qt.Equals, ast.CaseBreak)
	c.Assert(caseCmd.Arms[1].Term, qt.Equals, ast.CaseFallThru)
	c.Assert(caseCmd.Arms[2].Term, qt.Equals, ast.CaseContinue)
}

func TestParseFunctionDefShorthand(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "greet() { echo hi; }\n")
	stmt := onlyStmt(t, tree)
	fn, ok := stmt.Cmd.(*ast.FunctionDef)
	c.Assert(ok, qt.IsTrue)
	c.Assert(fn.Name, qt.Equals, "greet")
}

func TestParseFunctionKeywordForm(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "function greet { echo hi; }\n")
	stmt := onlyStmt(t, tree)
	fn, ok := stmt.Cmd.(*ast.FunctionDef)
	c.Assert(ok, qt.IsTrue)
	c.Assert(fn.Name, qt.Equals, "greet")
}

func TestParseSubshellAndBraceGroup(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "(echo sub)\n")
	stmt := onlyStmt(t, tree)
	_, ok := stmt.Cmd.(*ast.Subshell)
	c.Assert(ok, qt.IsTrue)

	tree = parse(t, "{ echo brace; }\n")
	stmt = onlyStmt(t, tree)
	_, ok = stmt.Cmd.(*ast.BraceGroup)
	c.Assert(ok, qt.IsTrue)
}

func TestParseArithmeticCommand(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "((1 + 2))\n")
	stmt := onlyStmt(t, tree)
	_, ok := stmt.Cmd.(*ast.Arithmetic)
	c.Assert(ok, qt.IsTrue)
}

func TestParseConditionalCommand(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "[[ -f /etc/passwd ]]\n")
	stmt := onlyStmt(t, tree)
	cond, ok := stmt.Cmd.(*ast.Conditional)
	c.Assert(ok, qt.IsTrue)
	_, ok = cond.X.(*ast.CondUnary)
	c.Assert(ok, qt.IsTrue)
}

func TestParseConditionalBinaryAndAndOr(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "[[ $a == $b && $c != $d ]]\n")
	stmt := onlyStmt(t, tree)
	cond, ok := stmt.Cmd.(*ast.Conditional)
	c.Assert(ok, qt.IsTrue)
	_, ok = cond.X.(*ast.CondAndOr)
	c.Assert(ok, qt.IsTrue)
}

func TestParseRedirection(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "echo hi > out.txt\n")
	stmt := onlyStmt(t, tree)
	c.Assert(stmt.Redirs, qt.HasLen, 1)
}

func TestParseDoubleQuotedWordWithParamExp(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, `echo "hello $name"` + "\n")
	stmt := onlyStmt(t, tree)
	simple := stmt.Cmd.(*ast.Simple)
	c.Assert(simple.Words, qt.HasLen, 2)
	dq, ok := simple.Words[1].Parts[0].(*ast.DoubleQuoted)
	c.Assert(ok, qt.IsTrue)
	c.Assert(len(dq.Parts) >= 2, qt.IsTrue)
}

func TestParseCommandSubstitution(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "echo $(echo inner)\n")
	stmt := onlyStmt(t, tree)
	simple := stmt.Cmd.(*ast.Simple)
	_, ok := simple.Words[1].Parts[0].(*ast.CmdSub)
	c.Assert(ok, qt.IsTrue)
}

func TestParseArrayLiteralAssignment(t *testing.T) {
	c := qt.New(t)
	tree := parse(t, "arr=(a b c)\n")
	stmt := onlyStmt(t, tree)
	c.Assert(stmt.Assigns, qt.HasLen, 1)
	c.Assert(stmt.Assigns[0].Array, qt.Not(qt.IsNil))
	c.Assert(stmt.Assigns[0].Array.Elems, qt.HasLen, 3)
}

func TestParseErrorUnterminatedSubshell(t *testing.T) {
	c := qt.New(t)
	_, err := parser.Parse([]byte("(echo hi"), parser.Options{})
	c.Assert(err, qt.Not(qt.IsNil))
	perr, ok := err.(*parser.ParseError)
	c.Assert(ok, qt.IsTrue)
	c.Assert(perr.Pos.Line, qt.Equals, 1)
}

func TestParseErrorUnclosedCaseHasPosition(t *testing.T) {
	c := qt.New(t)
	_, err := parser.Parse([]byte("case $x in\na) echo a ;;\n"), parser.Options{})
	c.Assert(err, qt.Not(qt.IsNil))
	perr, ok := err.(*parser.ParseError)
	c.Assert(ok, qt.IsTrue)
	c.Assert(perr.Pos.Line > 1, qt.IsTrue)
}
