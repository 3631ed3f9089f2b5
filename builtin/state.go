package builtin

import "sort"

// AliasTable stores name→expansion-text mappings for the `alias`/
// `unalias` builtins (spec.md §9 open question, resolved in DESIGN.md as
// "accept and store, do not expand": the lexer/parser pass never
// consults this table, but scripts that merely define/list/remove
// aliases behave as bash reports them).
type AliasTable struct {
	m map[string]string
}

func NewAliasTable() *AliasTable { return &AliasTable{m: map[string]string{}} }

func (a *AliasTable) Set(name, text string)   { a.m[name] = text }
func (a *AliasTable) Get(name string) (string, bool) {
	s, ok := a.m[name]
	return s, ok
}
func (a *AliasTable) Unset(name string) { delete(a.m, name) }

// Clone copies the table for subshell/background snapshot isolation.
func (a *AliasTable) Clone() *AliasTable {
	out := NewAliasTable()
	for k, v := range a.m {
		out.m[k] = v
	}
	return out
}
func (a *AliasTable) Names() []string {
	out := make([]string, 0, len(a.m))
	for n := range a.m {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// TrapTable stores signal/pseudo-signal name → handler command text for
// the `trap` builtin (spec.md §4.F "Traps": EXIT, ERR, DEBUG, RETURN,
// and name-or-number POSIX signals). The evaluator reads this directly
// to fire handlers at the right points; builtin only owns storage.
type TrapTable struct {
	m map[string]string
}

func NewTrapTable() *TrapTable { return &TrapTable{m: map[string]string{}} }

func (t *TrapTable) Set(name, cmd string) { t.m[name] = cmd }
func (t *TrapTable) Get(name string) (string, bool) {
	s, ok := t.m[name]
	return s, ok
}
func (t *TrapTable) Unset(name string) { delete(t.m, name) }

// Clone copies the table for subshell/background snapshot isolation.
func (t *TrapTable) Clone() *TrapTable {
	out := NewTrapTable()
	for k, v := range t.m {
		out.m[k] = v
	}
	return out
}
func (t *TrapTable) Names() []string {
	out := make([]string, 0, len(t.m))
	for n := range t.m {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// OptionTable holds the `set -o`/`shopt` boolean flags of spec.md §4.F
// "Shell options": errexit, nounset, pipefail, noglob, xtrace for `set`;
// expand_aliases, extglob, nullglob, failglob, dotglob, nocaseglob,
// globstar for `shopt`. The evaluator and expand.Config read these
// directly; builtin only owns the name→bool lookup `set`/`shopt` need to
// report and toggle them generically instead of one field switch each.
type OptionTable struct {
	set   map[string]bool
	shopt map[string]bool
}

func NewOptionTable() *OptionTable {
	return &OptionTable{set: map[string]bool{}, shopt: map[string]bool{}}
}

var setOptionNames = []string{"errexit", "nounset", "pipefail", "noglob", "xtrace"}
var shoptOptionNames = []string{
	"expand_aliases", "extglob", "nullglob", "failglob", "dotglob", "nocaseglob", "globstar",
}

func (o *OptionTable) SetOpt(name string, on bool)   { o.set[name] = on }
func (o *OptionTable) Set(name string) bool          { return o.set[name] }
func (o *OptionTable) SetShopt(name string, on bool) { o.shopt[name] = on }
func (o *OptionTable) Shopt(name string) bool        { return o.shopt[name] }

// Clone copies the table for subshell/background snapshot isolation.
func (o *OptionTable) Clone() *OptionTable {
	out := NewOptionTable()
	for k, v := range o.set {
		out.set[k] = v
	}
	for k, v := range o.shopt {
		out.shopt[k] = v
	}
	return out
}

func isSetOption(name string) bool {
	for _, n := range setOptionNames {
		if n == name {
			return true
		}
	}
	return false
}

func isShoptOption(name string) bool {
	for _, n := range shoptOptionNames {
		if n == name {
			return true
		}
	}
	return false
}

// HashTable remembers resolved command paths for the `hash` builtin,
// the small cache bash uses to avoid re-walking $PATH on every call to
// an external command already found once this session.
type HashTable struct {
	m map[string]string
}

func NewHashTable() *HashTable { return &HashTable{m: map[string]string{}} }

func (h *HashTable) Remember(name, path string) { h.m[name] = path }
func (h *HashTable) Lookup(name string) (string, bool) {
	p, ok := h.m[name]
	return p, ok
}
func (h *HashTable) Forget(name string) { delete(h.m, name) }
func (h *HashTable) Clear()             { h.m = map[string]string{} }
func (h *HashTable) Names() []string {
	out := make([]string, 0, len(h.m))
	for n := range h.m {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
