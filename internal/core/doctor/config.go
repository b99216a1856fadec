package doctor

import (
	"context"

	"github.com/riccilnl/linkgenie/internal/core/config"
)

// ConfigCheck reports configuration problems found by deep validation.
type ConfigCheck struct {
	cfg        *config.Config
	configPath string
}

// NewConfigCheck creates a new configuration check.
func NewConfigCheck(cfg *config.Config, configPath string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, configPath: configPath}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}
	vr := c.cfg.Check(c.configPath)

	for _, e := range vr.Errors {
		label := e.Item
		if label == "" {
			label = e.Category
		}
		result.Items = append(result.Items, CheckItem{
			Label:  label,
			Status: StatusFail,
			Detail: e.Message,
		})
	}

	for _, w := range vr.Warnings {
		label := w.Item
		if label == "" {
			label = w.Category
		}
		result.Items = append(result.Items, CheckItem{
			Label:  label,
			Status: StatusWarn,
			Detail: w.Message,
		})
	}

	if vr.IsValid() {
		detail := "defaults"
		if c.configPath != "" {
			detail = c.configPath
		}
		result.Items = append(result.Items, CheckItem{
			Label:  "config file",
			Status: StatusPass,
			Detail: detail,
		})
	}

	return result
}
