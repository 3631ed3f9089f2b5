package expand

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/everruns/bashkit-sub001/pattern"
	"github.com/everruns/bashkit-sub001/vfs"
)

// globField implements spec.md §4.E step 7, pathname expansion: a
// split field whose unquoted text contains a glob metacharacter is
// replaced by the sorted list of VFS paths it matches. A field with no
// metacharacters, or `set -f`/NoGlob, passes through unchanged. extglob
// (`@(...)`/`!(...)`/etc) is accepted syntactically by the parser but
// matched literally here — package pattern has no native extglob
// support, and the sandboxed scripts this project targets do not
// depend on it; see DESIGN.md.
func globField(cfg *Config, chunks []fieldPart) ([]string, error) {
	literal := literalValue(chunks)
	if cfg.NoGlob {
		return []string{literal}, nil
	}
	pat := patternText(chunks)
	if !pattern.HasMeta(pat, 0) {
		return []string{literal}, nil
	}
	matches, err := globPattern(cfg, pat)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		if cfg.FailGlob {
			return nil, fmt.Errorf("expand: no match for pattern %q", pat)
		}
		if cfg.NullGlob {
			return nil, nil
		}
		return []string{literal}, nil
	}
	sort.Strings(matches)
	return matches, nil
}

// globPattern walks pat component by component (split on "/"),
// listing each directory from the VFS and testing entries against the
// regex package pattern compiles, matching bash's rule that a glob
// only expands within one directory level per "*"/"?" (Filenames mode)
// and that a leading "." in an entry name is hidden unless the pattern
// itself starts with "." or DotGlob is set.
func globPattern(cfg *Config, pat string) ([]string, error) {
	absolute := strings.HasPrefix(pat, "/")
	trimmed := strings.TrimPrefix(pat, "/")
	var comps []string
	if trimmed != "" {
		comps = strings.Split(trimmed, "/")
	}
	dirAbs := cfg.cwd()
	if absolute {
		dirAbs = "/"
	}
	return matchComponents(cfg, dirAbs, "", comps)
}

func matchComponents(cfg *Config, dirAbs, display string, comps []string) ([]string, error) {
	if len(comps) == 0 {
		if display == "" {
			return []string{"."}, nil
		}
		return []string{display}, nil
	}
	comp, rest := comps[0], comps[1:]
	if comp == "" {
		return matchComponents(cfg, dirAbs, display, rest)
	}
	join := func(base, name string) string {
		if base == "" {
			return name
		}
		return base + "/" + name
	}

	if !pattern.HasMeta(comp, 0) {
		childAbs := vfs.Clean(dirAbs + "/" + comp)
		if _, err := cfg.VFS.Metadata(childAbs); err != nil {
			return nil, nil
		}
		return matchComponents(cfg, childAbs, join(display, comp), rest)
	}

	entries, err := cfg.VFS.List(dirAbs)
	if err != nil {
		return nil, nil
	}
	mode := pattern.Filenames
	if cfg.NoCaseGlob {
		mode |= pattern.NoCaseGlob
	}
	if !cfg.GlobStar {
		mode |= pattern.NoGlobStar
	}
	reSrc, err := pattern.Regexp(comp, mode|pattern.EntireString)
	if err != nil {
		return nil, fmt.Errorf("expand: bad glob pattern %q: %w", comp, err)
	}
	re, err := regexp.Compile(reSrc)
	if err != nil {
		return nil, fmt.Errorf("expand: bad glob pattern %q: %w", comp, err)
	}

	showDot := cfg.DotGlob || strings.HasPrefix(comp, ".")
	var out []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name, ".") && !showDot {
			continue
		}
		if !re.MatchString(e.Name) {
			continue
		}
		childAbs := vfs.Clean(dirAbs + "/" + e.Name)
		if len(rest) > 0 && e.Node.Kind() != vfs.KindDir {
			continue
		}
		sub, err := matchComponents(cfg, childAbs, join(display, e.Name), rest)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}
