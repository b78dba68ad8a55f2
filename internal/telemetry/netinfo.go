package telemetry

import (
	"context"
	"fmt"
	"strings"

	"github.com/trayd/trayd/internal/exec"
	"github.com/trayd/trayd/internal/logger"
	"github.com/trayd/trayd/internal/telemetry/parsers"
)

// Unknown fills network fields that could not be determined.
const Unknown = "-"

// VPNPrefixes are interface name prefixes treated as tunnels.
var VPNPrefixes = []string{"utun", "ipsec", "ppp", "tun", "tap", "gif", "stf"}

// NetworkInfo describes the active connection.
type NetworkInfo struct {
	InterfaceType string `json:"interfaceType"`
	NetworkName   string `json:"networkName"`
	LocalIP       string `json:"localIp"`
	PublicIP      string `json:"publicIp"`
	MAC           string `json:"macAddress"`
	Gateway       string `json:"gateway"`
	// VPN is set when the default route went through a tunnel and the
	// fields describe the physical interface underneath.
	VPN bool `json:"vpn"`
}

// Wire returns the string map the network popover reads.
func (n NetworkInfo) Wire() map[string]string {
	return map[string]string{
		"interfaceType": n.InterfaceType,
		"networkName":   n.NetworkName,
		"localIp":       n.LocalIP,
		"publicIp":      n.PublicIP,
		"macAddress":    n.MAC,
		"gateway":       n.Gateway,
	}
}

// NetworkProbe inspects the default route with route, ifconfig and
// networksetup. The public address is not looked up: trayd makes no
// outbound requests.
type NetworkProbe struct {
	run exec.Runner
	log logger.Logger
}

// NewNetworkProbe creates a probe running commands through run.
func NewNetworkProbe(run exec.Runner, log logger.Logger) *NetworkProbe {
	return &NetworkProbe{run: run, log: logger.OrNoop(log)}
}

// IsVPN reports whether iface is a tunnel interface.
func IsVPN(iface string) bool {
	lower := strings.ToLower(iface)
	for _, p := range VPNPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// InterfaceType classifies a wired or virtual interface by name.
func InterfaceType(iface string) string {
	switch {
	case strings.HasPrefix(iface, "en"):
		return "Ethernet"
	case strings.HasPrefix(iface, "bridge"):
		return "Bridge"
	case strings.HasPrefix(iface, "vmnet"):
		return "VMware"
	case strings.HasPrefix(iface, "vnic"):
		return "Virtual"
	}
	return iface
}

// Info describes the active connection. Fields that cannot be determined
// are Unknown.
func (p *NetworkProbe) Info(ctx context.Context) NetworkInfo {
	info := NetworkInfo{
		InterfaceType: Unknown,
		NetworkName:   Unknown,
		LocalIP:       Unknown,
		PublicIP:      Unknown,
		MAC:           Unknown,
		Gateway:       Unknown,
	}

	var iface string
	if out, err := p.run.Run(ctx, "route", "-n", "get", "default"); err == nil {
		var gw string
		iface, gw = parsers.ParseRoute(out)
		if gw != "" {
			info.Gateway = gw
		}
	} else {
		p.log.Debug("route: %v", err)
	}

	if iface != "" && IsVPN(iface) {
		info.VPN = true
		if phys := p.physicalInterface(ctx); phys != "" {
			iface = phys
			info.Gateway = Unknown
		}
	}
	if iface == "" {
		return info
	}

	if out, err := p.run.Run(ctx, "ifconfig", iface); err == nil {
		c := parsers.ParseIfconfig(out)
		if c.IPv4 != "" {
			info.LocalIP = c.IPv4
		}
		if c.MAC != "" {
			info.MAC = c.MAC
		}
	}

	if info.VPN {
		if gw, ok := p.gatewayFor(ctx, iface); ok {
			info.Gateway = gw
		}
	}

	if strings.HasPrefix(iface, "en") {
		if out, err := p.run.Run(ctx, "networksetup", "-getairportnetwork", iface); err == nil {
			if ssid, ok := parsers.ParseAirportNetwork(out); ok {
				info.InterfaceType = "WiFi"
				info.NetworkName = ssid
				if ssid == "" {
					info.NetworkName = "Connected"
				}
				return info
			}
		}
	}

	info.InterfaceType = InterfaceType(iface)
	info.NetworkName = iface
	return info
}

// physicalInterface finds the first active non-tunnel en* device, first in
// service order and then by scanning en0 to en9.
func (p *NetworkProbe) physicalInterface(ctx context.Context) string {
	var candidates []string
	if out, err := p.run.Run(ctx, "networksetup", "-listnetworkserviceorder"); err == nil {
		for _, s := range parsers.ParseServiceOrder(out) {
			if s.Device != "" && !IsVPN(s.Device) && strings.HasPrefix(s.Device, "en") {
				candidates = append(candidates, s.Device)
			}
		}
	}
	for i := 0; i <= 9; i++ {
		candidates = append(candidates, fmt.Sprintf("en%d", i))
	}

	tried := make(map[string]bool)
	for _, dev := range candidates {
		if tried[dev] {
			continue
		}
		tried[dev] = true
		out, err := p.run.Run(ctx, "ifconfig", dev)
		if err != nil {
			continue
		}
		if parsers.ParseIfconfig(out).Active {
			return dev
		}
	}
	return ""
}

// gatewayFor looks up the router of the network service bound to iface.
func (p *NetworkProbe) gatewayFor(ctx context.Context, iface string) (string, bool) {
	out, err := p.run.Run(ctx, "networksetup", "-listnetworkserviceorder")
	if err != nil {
		return "", false
	}
	for _, s := range parsers.ParseServiceOrder(out) {
		if s.Device != iface {
			continue
		}
		info, err := p.run.Run(ctx, "networksetup", "-getinfo", s.Name)
		if err != nil {
			return "", false
		}
		return parsers.ParseRouter(info)
	}
	return "", false
}
