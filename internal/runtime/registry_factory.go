// SPDX-License-Identifier: MPL-2.0

package runtime

import "github.com/qcsv/qtask/internal/config"

// BuildRegistry creates a registry with the native and virtual runtimes,
// honoring the configured virtual shell options. A nil cfg means defaults.
func BuildRegistry(cfg *config.Config) *Registry {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	reg := NewRegistry()
	reg.Register(RuntimeTypeNative, NewNativeRuntime())
	reg.Register(RuntimeTypeVirtual, NewVirtualRuntime(cfg.VirtualShell.EnableUrootUtils))
	return reg
}
