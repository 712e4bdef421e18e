package hook

import "werdiff/internal/config"

// SelectHookConfig returns the first hook whose min_wer threshold is reached
// by errorRate (a percentage), or nil when none applies.
func SelectHookConfig(cfg *config.Config, errorRate float64) *config.HookConfig {
	for i := range cfg.Hooks {
		hk := &cfg.Hooks[i]
		if errorRate >= hk.MinWER {
			return hk
		}
	}
	return nil
}
