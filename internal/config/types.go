package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the complete trayd configuration file.
type Config struct {
	Bridge    BridgeConfig    `yaml:"bridge" mapstructure:"bridge"`
	Tray      TrayConfig      `yaml:"tray" mapstructure:"tray"`
	Popover   PopoverConfig   `yaml:"popover" mapstructure:"popover"`
	Preview   PreviewConfig   `yaml:"preview" mapstructure:"preview"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
}

// BridgeConfig controls the host-facing message bridge.
type BridgeConfig struct {
	// Socket is the unix socket path the daemon listens on.
	// Supports ~ and ${TMPDIR}.
	Socket string `yaml:"socket" mapstructure:"socket"`

	// CallTimeout bounds how long a single bridge method may block the UI loop.
	CallTimeout time.Duration `yaml:"call_timeout" mapstructure:"call_timeout"`
}

// TrayConfig controls menu bar entries.
type TrayConfig struct {
	// Backend selects the tray implementation: "headless" or "sni".
	Backend string `yaml:"backend" mapstructure:"backend"`

	// FontSize and FontWeight style setAttributedTitle when the call
	// leaves them out.
	FontSize float64 `yaml:"font_size" mapstructure:"font_size"`

	FontWeight string `yaml:"font_weight" mapstructure:"font_weight"`

	// BatteryWidth is the entry length for the battery glyph when no
	// fixed width is given.
	BatteryWidth float64 `yaml:"battery_width" mapstructure:"battery_width"`
}

// Size is a width/height pair in points.
type Size struct {
	Width  float64 `yaml:"width" mapstructure:"width"`
	Height float64 `yaml:"height" mapstructure:"height"`
}

// PopoverConfig controls the item popover.
type PopoverConfig struct {
	// Gap is the vertical distance between an entry and its popover.
	Gap float64 `yaml:"gap" mapstructure:"gap"`

	// DefaultSize applies to ids missing from Sizes.
	DefaultSize Size `yaml:"default_size" mapstructure:"default_size"`

	// Sizes maps item ids to their popover size.
	Sizes map[string]Size `yaml:"sizes" mapstructure:"sizes"`

	// LocalItems are the ids whose popover data trayd resolves itself.
	// Clicking them never notifies the host.
	LocalItems []string `yaml:"local_items" mapstructure:"local_items"`
}

// SizeFor returns the popover size for id. Keys are matched
// case-insensitively because viper folds map keys to lower case.
func (p PopoverConfig) SizeFor(id string) Size {
	if s, ok := p.Sizes[id]; ok {
		return s
	}
	if s, ok := p.Sizes[strings.ToLower(id)]; ok {
		return s
	}
	return p.DefaultSize
}

// IsLocal reports whether id is resolved locally.
func (p PopoverConfig) IsLocal(id string) bool {
	for _, l := range p.LocalItems {
		if l == id {
			return true
		}
	}
	return false
}

// PreviewConfig controls the tray preview panel.
type PreviewConfig struct {
	Width          float64 `yaml:"width" mapstructure:"width"`
	Height         float64 `yaml:"height" mapstructure:"height"`
	TitleBarHeight float64 `yaml:"title_bar_height" mapstructure:"title_bar_height"`
	Gap            float64 `yaml:"gap" mapstructure:"gap"`
}

// TelemetryConfig controls the sampler and process ranking.
type TelemetryConfig struct {
	// InterfacePrefixes selects which network interfaces count toward
	// the aggregate upload/download rates.
	InterfacePrefixes []string `yaml:"interface_prefixes" mapstructure:"interface_prefixes"`

	// DiskPath is the volume reported by disk usage.
	DiskPath string `yaml:"disk_path" mapstructure:"disk_path"`

	// ProcessLimit is the default number of processes returned by rankings.
	ProcessLimit int `yaml:"process_limit" mapstructure:"process_limit"`

	// GPUAllowlist holds name fragments of processes assumed to use the GPU.
	GPUAllowlist []string `yaml:"gpu_allowlist" mapstructure:"gpu_allowlist"`

	// GPUCPUThreshold is the CPU percentage above which any process is
	// also treated as a GPU candidate.
	GPUCPUThreshold float64 `yaml:"gpu_cpu_threshold" mapstructure:"gpu_cpu_threshold"`

	// CommandTimeout bounds each external query (ps, lsof, nettop, ioreg).
	CommandTimeout time.Duration `yaml:"command_timeout" mapstructure:"command_timeout"`
}

// DefaultGPUAllowlist lists applications that usually hold a GPU context.
var DefaultGPUAllowlist = []string{
	"WindowServer", "Safari", "Chrome", "Firefox", "Brave", "Arc",
	"Unity", "Unreal", "Blender", "Final Cut", "Motion", "Compressor",
	"DaVinci", "Premiere", "After Effects", "Photoshop", "Illustrator",
	"Sketch", "Figma", "Steam", "Parallels", "VMware", "VirtualBox",
	"qemu", "CyberCultivation",
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Bridge: BridgeConfig{
			Socket:      filepath.Join(os.TempDir(), "trayd.sock"),
			CallTimeout: 5 * time.Second,
		},
		Tray: TrayConfig{
			Backend:      "headless",
			FontSize:     10,
			FontWeight:   "regular",
			BatteryWidth: 38,
		},
		Popover: PopoverConfig{
			Gap:         4,
			DefaultSize: Size{Width: 340, Height: 136},
			Sizes: map[string]Size{
				"network":  {Width: 490, Height: 280},
				"disk":     {Width: 490, Height: 210},
				"cpu":      {Width: 430, Height: 210},
				"gpu":      {Width: 430, Height: 210},
				"ram":      {Width: 430, Height: 210},
				"battery":  {Width: 430, Height: 210},
				"todo":     {Width: 340, Height: 210},
				"levelexp": {Width: 340, Height: 156},
				"focus":    {Width: 340, Height: 156},
				"keyboard": {Width: 340, Height: 156},
				"mouse":    {Width: 340, Height: 156},
			},
			LocalItems: []string{"cpu", "gpu", "ram", "disk", "network", "battery"},
		},
		Preview: PreviewConfig{
			Width:          360,
			Height:         480,
			TitleBarHeight: 28,
			Gap:            4,
		},
		Telemetry: TelemetryConfig{
			InterfacePrefixes: []string{"en", "utun", "pdp_ip"},
			DiskPath:          "/",
			ProcessLimit:      5,
			GPUAllowlist:      append([]string(nil), DefaultGPUAllowlist...),
			GPUCPUThreshold:   1.0,
			CommandTimeout:    5 * time.Second,
		},
	}
}

// ExpandPath resolves a leading ~ and ${TMPDIR} in a local path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if strings.Contains(path, "${TMPDIR}") {
		path = strings.ReplaceAll(path, "${TMPDIR}", strings.TrimSuffix(os.TempDir(), "/"))
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}
