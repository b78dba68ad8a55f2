package config

import (
	"fmt"

	"github.com/trayd/trayd/internal/errors"
)

// Backends accepted in tray.backend.
var Backends = map[string]bool{
	"headless": true,
	"sni":      true,
}

// FontWeights accepted in tray.font_weight.
var FontWeights = map[string]bool{
	"light":    true,
	"regular":  true,
	"medium":   true,
	"semibold": true,
	"bold":     true,
}

// Validate checks the config and returns the first problem as a CONFIG error.
func Validate(cfg *Config) error {
	if cfg.Bridge.Socket == "" {
		return errors.New(errors.ErrConfig,
			"bridge.socket is empty",
			"Set bridge.socket to a writable path, e.g. ~/.cache/trayd.sock")
	}

	if !Backends[cfg.Tray.Backend] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown tray backend %q", cfg.Tray.Backend),
			"Use 'headless' or 'sni'")
	}
	if !FontWeights[cfg.Tray.FontWeight] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown font weight %q", cfg.Tray.FontWeight),
			"Use one of light, regular, medium, semibold, bold")
	}
	if cfg.Tray.FontSize <= 0 {
		return errors.New(errors.ErrConfig,
			"tray.font_size must be positive",
			"The default is 10")
	}

	if cfg.Popover.Gap < 0 || cfg.Preview.Gap < 0 {
		return errors.New(errors.ErrConfig,
			"Popover gaps must not be negative",
			"Set popover.gap and preview.gap to 0 or more")
	}
	if err := validateSize("popover.default_size", cfg.Popover.DefaultSize); err != nil {
		return err
	}
	for id, s := range cfg.Popover.Sizes {
		if err := validateSize("popover.sizes."+id, s); err != nil {
			return err
		}
	}
	if err := validateSize("preview", Size{Width: cfg.Preview.Width, Height: cfg.Preview.Height}); err != nil {
		return err
	}

	if len(cfg.Telemetry.InterfacePrefixes) == 0 {
		return errors.New(errors.ErrConfig,
			"telemetry.interface_prefixes is empty",
			"List at least one prefix, e.g. [en, utun, pdp_ip]")
	}
	if cfg.Telemetry.ProcessLimit <= 0 {
		return errors.New(errors.ErrConfig,
			"telemetry.process_limit must be positive",
			"The default is 5")
	}
	if cfg.Telemetry.CommandTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			"telemetry.command_timeout must be positive",
			"Use a duration such as 5s")
	}
	return nil
}

func validateSize(key string, s Size) error {
	if s.Width <= 0 || s.Height <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("%s must have a positive width and height (got %gx%g)", key, s.Width, s.Height),
			"Remove the entry to fall back to the default size")
	}
	return nil
}
