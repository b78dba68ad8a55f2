package parsers

import (
	"regexp"
	"strings"
)

var (
	routeInterfaceRe = regexp.MustCompile(`interface:\s*(\S+)`)
	routeGatewayRe   = regexp.MustCompile(`gateway:\s*(\S+)`)
	inetRe           = regexp.MustCompile(`inet\s+(\d+\.\d+\.\d+\.\d+)`)
	etherRe          = regexp.MustCompile(`(?:ether|lladdr)\s+([0-9a-fA-F:]+)`)
	serviceRe        = regexp.MustCompile(`\((\d+|\*)\)\s+([^\n]+)\n\(Hardware Port:\s*([^,]+),\s*Device:\s*(\w*)\)`)
	routerRe         = regexp.MustCompile(`Router:\s*(\d+\.\d+\.\d+\.\d+)`)
)

// ParseRoute extracts the interface and gateway from `route -n get default`.
func ParseRoute(output string) (iface, gateway string) {
	if m := routeInterfaceRe.FindStringSubmatch(output); m != nil {
		iface = m[1]
	}
	if m := routeGatewayRe.FindStringSubmatch(output); m != nil {
		gateway = m[1]
	}
	return iface, gateway
}

// Ifconfig is the part of `ifconfig <iface>` output trayd reads.
type Ifconfig struct {
	IPv4 string
	// MAC is upper-cased.
	MAC string
	// Active is true when the interface has an IPv4 address and reports
	// "status: active".
	Active bool
}

// ParseIfconfig parses `ifconfig <iface>` output.
func ParseIfconfig(output string) Ifconfig {
	var c Ifconfig
	if m := inetRe.FindStringSubmatch(output); m != nil {
		c.IPv4 = m[1]
	}
	if m := etherRe.FindStringSubmatch(output); m != nil {
		c.MAC = strings.ToUpper(m[1])
	}
	c.Active = strings.Contains(output, "inet ") && strings.Contains(output, "status: active")
	return c
}

// Service is one entry of `networksetup -listnetworkserviceorder`.
type Service struct {
	Name   string
	Port   string
	Device string
}

// ParseServiceOrder parses `networksetup -listnetworkserviceorder`, in
// service order.
func ParseServiceOrder(output string) []Service {
	var out []Service
	for _, m := range serviceRe.FindAllStringSubmatch(output, -1) {
		out = append(out, Service{
			Name:   strings.TrimSpace(m[2]),
			Port:   strings.TrimSpace(m[3]),
			Device: strings.TrimSpace(m[4]),
		})
	}
	return out
}

// ParseRouter extracts the router address from `networksetup -getinfo`.
func ParseRouter(output string) (string, bool) {
	if m := routerRe.FindStringSubmatch(output); m != nil {
		return m[1], true
	}
	return "", false
}

// ParseAirportNetwork extracts the SSID from `networksetup
// -getairportnetwork <iface>`. ok is false when the interface is not
// associated with a wireless network.
func ParseAirportNetwork(output string) (string, bool) {
	for _, prefix := range []string{"Current Wi-Fi Network:", "Current Airport Network:"} {
		if i := strings.Index(output, prefix); i >= 0 {
			return strings.TrimSpace(output[i+len(prefix):]), true
		}
	}
	return "", false
}
