package tactile

import "strings"

// setEnvKey sets or updates an environment variable.
func setEnvKey(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = key + "=" + value
			return env
		}
	}
	return append(env, key+"="+value)
}

// MergeEnv merges additional KEY=VALUE entries into base. Later values
// override earlier ones and malformed entries are skipped. base is not
// modified.
func MergeEnv(base []string, additional ...string) []string {
	result := make([]string, len(base))
	copy(result, base)

	for _, add := range additional {
		key, value, ok := strings.Cut(add, "=")
		if ok {
			result = setEnvKey(result, key, value)
		}
	}

	return result
}
