package expand

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/everruns/bashkit-sub001/ast"
)

// Fields runs the full eight-step pipeline of spec.md §4.E over a
// simple command's word list: brace expansion first (word level, since
// one brace can multiply into several sibling words), then per-word
// part expansion, IFS splitting, and pathname expansion, yielding the
// final flat argv.
func Fields(cfg *Config, words []ast.Word) ([]string, error) {
	ifs := cfg.ifs()
	var out []string
	for _, w := range words {
		for _, bw := range ExpandBraces(w) {
			chunks, err := expandWordParts(cfg, bw.Parts, false)
			if err != nil {
				return nil, err
			}
			for _, field := range splitWord(chunks, ifs) {
				matches, err := globField(cfg, field)
				if err != nil {
					return nil, err
				}
				out = append(out, matches...)
			}
		}
	}
	return out, nil
}

// Literal expands w without field splitting or pathname expansion, the
// form an assignment's right-hand side, a heredoc delimiter, or a
// `declare`/`export` operand needs. Brace expansion is not applied
// here: a brace in assignment-value position stays an assignment's
// literal text in bash too, since assignment word recognition happens
// before brace expansion would otherwise split it into several words.
func Literal(cfg *Config, w ast.Word) (string, error) {
	chunks, err := expandWordParts(cfg, w.Parts, false)
	if err != nil {
		return "", err
	}
	return literalValue(chunks), nil
}

// ExpandPattern expands w for a pattern-matching position (a `case`
// arm, the right-hand side of `[[ x == pat ]]`): like Literal, no
// splitting or globbing, but quoted runs are meta-escaped so they
// match literally instead of acting as wildcards.
func ExpandPattern(cfg *Config, w ast.Word) (string, error) {
	chunks, err := expandWordParts(cfg, w.Parts, false)
	if err != nil {
		return "", err
	}
	return patternText(chunks), nil
}

func expandWordFields(cfg *Config, w ast.Word, quoted bool) ([]fieldPart, error) {
	return expandWordParts(cfg, w.Parts, quoted)
}

func expandWordParts(cfg *Config, parts []ast.WordPart, quoted bool) ([]fieldPart, error) {
	var out []fieldPart
	for _, p := range parts {
		chunks, err := expandWordPart(cfg, p, quoted)
		if err != nil {
			return nil, err
		}
		out = append(out, chunks...)
	}
	return out, nil
}

func expandWordPart(cfg *Config, p ast.WordPart, quoted bool) ([]fieldPart, error) {
	switch v := p.(type) {
	case *ast.Literal:
		return []fieldPart{chunkFor(v.Value, quoted)}, nil
	case *ast.SingleQuoted:
		return []fieldPart{quotedLit(v.Value)}, nil
	case *ast.DollarSingle:
		return []fieldPart{quotedLit(v.Value)}, nil
	case *ast.DoubleQuoted:
		// Parts inside "..." are still expanded (param/cmd/arith subs
		// all run), just marked quoted so they never split or glob;
		// an unquoted "$@"/"${arr[@]}" element boundary still applies.
		return expandWordParts(cfg, v.Parts, true)
	case *ast.ParamExp:
		return paramFields(cfg, v, quoted)
	case *ast.CmdSub:
		out, status, err := cfg.Runner.RunCapture(v.Body)
		if err != nil {
			return nil, err
		}
		cfg.Scope.SetLastStatus(status)
		out = strings.TrimRight(out, "\n")
		return []fieldPart{chunkFor(out, quoted)}, nil
	case *ast.ArithSub:
		n, err := Arith(cfg, v.X)
		if err != nil {
			return nil, err
		}
		return []fieldPart{chunkFor(strconv.FormatInt(n, 10), quoted)}, nil
	case *ast.ProcSub:
		path, err := cfg.Runner.RunProcSub(v.Dir, v.Body)
		if err != nil {
			return nil, err
		}
		return []fieldPart{chunkFor(path, quoted)}, nil
	case *ast.Tilde:
		return []fieldPart{chunkFor(ExpandTilde(cfg, v), quoted)}, nil
	case *ast.Brace:
		// ExpandBraces runs as a word-level pre-pass before this
		// dispatcher; a Brace reaching here is nested somewhere
		// ExpandBraces does not walk into (e.g. a $() operand's own
		// sub-word already went through its own Fields call). Expand
		// in place and join the alternatives with a space as the
		// closest single-field approximation.
		var texts []string
		if v.Sequence != nil {
			texts = braceSequenceValues(v.Sequence)
		} else {
			for _, a := range v.Alts {
				s, err := Literal(cfg, a)
				if err != nil {
					return nil, err
				}
				texts = append(texts, s)
			}
		}
		return []fieldPart{chunkFor(strings.Join(texts, " "), quoted)}, nil
	}
	return nil, fmt.Errorf("expand: unsupported word part %T", p)
}
