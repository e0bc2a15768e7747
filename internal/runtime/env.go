// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"maps"
	"os"
	"slices"
	"strings"
)

// MergeEnv layers environment maps; later maps override earlier ones.
// Nil maps are skipped.
func MergeEnv(layers ...map[string]string) map[string]string {
	env := make(map[string]string)
	for _, layer := range layers {
		maps.Copy(env, layer)
	}
	return env
}

// EnvToSlice converts an environment map to KEY=VALUE pairs sorted by key.
func EnvToSlice(env map[string]string) []string {
	keys := slices.Sorted(maps.Keys(env))
	result := make([]string, 0, len(keys))
	for _, k := range keys {
		result = append(result, k+"="+env[k])
	}
	return result
}

// processEnv returns the inherited environment with extra applied on top.
// Entries already present in the host environment are replaced rather than
// duplicated, so child processes never see two values for one name.
func processEnv(extra map[string]string) []string {
	host := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		host[k] = v
	}
	return EnvToSlice(MergeEnv(host, extra))
}
