// ABOUTME: Test helpers for config tests
// ABOUTME: Provides utilities for environment variable management

package config

import (
	"os"
	"testing"
)

// withCleanEnv clears the environment, sets the required upstream URLs to
// test values, and returns a cleanup function that restores the original env.
// Use with t.Cleanup().
func withCleanEnv(t *testing.T) func() {
	t.Helper()
	return withCleanEnvAndExtra(t, nil)
}

// withCleanEnvAndExtra clears the environment, sets the required upstream
// URLs plus additional vars, and returns a cleanup function that restores the
// original env. Use with t.Cleanup().
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    t.Cleanup(withCleanEnvAndExtra(t, map[string]string{
//	        "SESSION_BACKEND": "sqlite",
//	    }))
//	}
func withCleanEnvAndExtra(t *testing.T, extra map[string]string) func() {
	t.Helper()

	originalEnv := os.Environ()
	os.Clearenv()

	os.Setenv("AUTH_API_URL", "https://auth.test.com")
	os.Setenv("API_BASE_URL", "https://api.test.com")

	for key, value := range extra {
		os.Setenv(key, value)
	}

	return func() {
		os.Clearenv()
		for _, env := range originalEnv {
			for i := 0; i < len(env); i++ {
				if env[i] == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	}
}
