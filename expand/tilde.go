package expand

import (
	"strings"

	"github.com/everruns/bashkit-sub001/ast"
)

// ExpandTilde resolves a leading ~, ~+, ~-, or ~user word part (spec.md
// §4.E step 2) to a directory path. ~ and a bare ~user resolve against
// $HOME and /etc/passwd (read from the sandboxed vfs.FS, best-effort:
// a name with no matching passwd entry is left unexpanded, same as
// bash's "unknown user" behavior); ~+ and ~- resolve against $PWD and
// $OLDPWD.
func ExpandTilde(cfg *Config, t *ast.Tilde) string {
	switch t.User {
	case "":
		if v, ok := cfg.Scope.Get("HOME"); ok {
			return v.Value.String()
		}
		return "/"
	case "+":
		return cfg.cwd()
	case "-":
		if v, ok := cfg.Scope.Get("OLDPWD"); ok {
			return v.Value.String()
		}
		return cfg.cwd()
	}
	if home, ok := lookupPasswdHome(cfg, t.User); ok {
		return home
	}
	return "~" + t.User
}

// lookupPasswdHome reads /etc/passwd from the sandbox's virtual
// filesystem, in the traditional colon-delimited
// "name:pass:uid:gid:gecos:home:shell" layout, and returns the home
// directory field for the first matching username.
func lookupPasswdHome(cfg *Config, name string) (string, bool) {
	if cfg.VFS == nil {
		return "", false
	}
	data, err := cfg.VFS.Read("/etc/passwd")
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) >= 6 && fields[0] == name {
			return fields[5], true
		}
	}
	return "", false
}
