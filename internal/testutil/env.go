package testutil

import (
	"os"
	"strings"
	"testing"
)

// ClearEnv unsets every variable whose name starts with prefix and restores
// them when t finishes, so tests see built-in defaults regardless of the
// developer's shell or .env.
func ClearEnv(t testing.TB, prefix string) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, prefix) {
			t.Cleanup(unsetEnv(key))
		}
	}
}

func unsetEnv(key string) func() {
	prev, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	return func() {
		if had {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	}
}
