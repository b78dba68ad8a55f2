package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/trayd/trayd/internal/errors"
)

const (
	// ConfigDirName is the directory under the user config root.
	ConfigDirName = "trayd"
	// ConfigFileName is the config file name inside ConfigDirName.
	ConfigFileName = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. TRAYD_TRAY_BACKEND.
	EnvPrefix = "TRAYD"
)

// Load reads config from the specified path, applies environment
// overrides and fills in defaults for anything the file leaves out.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Create "+path+" or drop the --config flag to use defaults")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
//  1. Explicit path (from --config flag)
//  2. $XDG_CONFIG_HOME/trayd/config.yaml
//  3. ~/.config/trayd/config.yaml
//
// Returns the empty string when no file exists.
func Find(explicit string) (string, error) {
	if explicit != "" {
		explicit = ExpandPath(explicit)
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	for _, candidate := range searchPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

func searchPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, ConfigDirName, ConfigFileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, ConfigFileName))
	}
	return paths
}

// LoadOrDefault finds and loads the config file, falling back to defaults
// (with environment overrides) when there is none. The result is validated.
func LoadOrDefault(explicit string) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}

	var cfg *Config
	if path == "" {
		cfg, err = parseConfig(newViper(), "")
	} else {
		cfg, err = Load(path)
	}
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults registers scalar defaults with viper so AutomaticEnv can
// see the keys during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("bridge.socket", d.Bridge.Socket)
	v.SetDefault("bridge.call_timeout", d.Bridge.CallTimeout)
	v.SetDefault("tray.backend", d.Tray.Backend)
	v.SetDefault("tray.font_size", d.Tray.FontSize)
	v.SetDefault("tray.font_weight", d.Tray.FontWeight)
	v.SetDefault("tray.battery_width", d.Tray.BatteryWidth)
	v.SetDefault("popover.gap", d.Popover.Gap)
	v.SetDefault("preview.width", d.Preview.Width)
	v.SetDefault("preview.height", d.Preview.Height)
	v.SetDefault("preview.title_bar_height", d.Preview.TitleBarHeight)
	v.SetDefault("preview.gap", d.Preview.Gap)
	v.SetDefault("telemetry.disk_path", d.Telemetry.DiskPath)
	v.SetDefault("telemetry.process_limit", d.Telemetry.ProcessLimit)
	v.SetDefault("telemetry.gpu_cpu_threshold", d.Telemetry.GPUCPUThreshold)
	v.SetDefault("telemetry.command_timeout", d.Telemetry.CommandTimeout)
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		where := "your config"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+where)
	}

	// Lists replace the defaults wholesale instead of merging by index.
	for key, dst := range map[string]*[]string{
		"popover.local_items":          &cfg.Popover.LocalItems,
		"telemetry.interface_prefixes": &cfg.Telemetry.InterfacePrefixes,
		"telemetry.gpu_allowlist":      &cfg.Telemetry.GPUAllowlist,
	} {
		if v.IsSet(key) {
			*dst = v.GetStringSlice(key)
		}
	}

	cfg.Bridge.Socket = ExpandPath(cfg.Bridge.Socket)
	return cfg, nil
}
