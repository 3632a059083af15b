package config

import "os"

// ExpandEnv expands ${VAR} and $VAR references in YAML content before
// parsing, same shell-style substitution the teacher config loader uses.
// Missing variables expand to empty string; validation catches required
// fields left empty by that.
func ExpandEnv(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
