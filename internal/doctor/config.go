package doctor

import (
	"context"
	"fmt"

	"github.com/trayd/trayd/internal/config"
	"github.com/trayd/trayd/internal/errors"
)

// ConfigCheck loads and validates the config file, or reports that the
// built-in defaults are in use.
type ConfigCheck struct {
	Path string // explicit --config path, or empty to search
}

func (c *ConfigCheck) Name() string     { return "config" }
func (c *ConfigCheck) Category() string { return "CONFIG" }
func (c *ConfigCheck) Fix() error       { return nil }

func (c *ConfigCheck) Run(_ context.Context) CheckResult {
	path, err := config.Find(c.Path)
	if err != nil {
		return c.fail(err)
	}

	var cfg *config.Config
	if path == "" {
		cfg = config.DefaultConfig()
	} else if cfg, err = config.Load(path); err != nil {
		return c.fail(err)
	}
	if err := config.Validate(cfg); err != nil {
		return c.fail(err)
	}

	msg := "No config file, using defaults"
	if path != "" {
		msg = fmt.Sprintf("Config file: %s", path)
	}
	return CheckResult{Name: c.Name(), Status: StatusPass, Message: msg}
}

func (c *ConfigCheck) fail(err error) CheckResult {
	return CheckResult{
		Name:       c.Name(),
		Status:     StatusFail,
		Message:    errors.Summary(err),
		Suggestion: errors.SuggestionOf(err),
	}
}
