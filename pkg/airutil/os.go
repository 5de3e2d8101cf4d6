package airutil

import "github.com/drone/envsubst"

// ExpandEnv substitutes ${VAR} expressions using the
// environment. Invalid expressions are returned unchanged.
func ExpandEnv(s string) string {
	val, err := envsubst.EvalEnv(s)
	if err != nil {
		return s
	}
	return val
}

// ExpandEnvAll expands every element of ss.
func ExpandEnvAll(ss []string) []string {
	out := make([]string, len(ss))
	for i := range ss {
		out[i] = ExpandEnv(ss[i])
	}
	return out
}
