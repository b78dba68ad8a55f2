package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trayd/trayd/internal/exec"
)

const (
	routeWiFi = `   route to: default
destination: default
       mask: default
    gateway: 192.168.1.1
  interface: en0
      flags: <UP,GATEWAY,DONE,STATIC,PRCLONING>
`
	routeVPN = `   route to: default
destination: default
  interface: utun4
`
	ifconfigEn0 = `en0: flags=8863<UP,BROADCAST,SMART,RUNNING,SIMPLEX,MULTICAST> mtu 1500
	ether a4:83:e7:1b:22:9c
	inet 192.168.1.23 netmask 0xffffff00 broadcast 192.168.1.255
	status: active
`
	ifconfigInactive = `en1: flags=8863<UP> mtu 1500
	ether 82:1f:00:aa:bb:cc
	status: inactive
`
	serviceOrder = `An asterisk (*) denotes that a network service is disabled.
(1) Wi-Fi
(Hardware Port: Wi-Fi, Device: en0)

(2) Thunderbolt Bridge
(Hardware Port: Thunderbolt Bridge, Device: bridge0)

`
)

func TestNetworkInfo_WiFi(t *testing.T) {
	run := exec.NewScripted(map[string]string{
		"route -n get default":                routeWiFi,
		"ifconfig en0":                        ifconfigEn0,
		"networksetup -getairportnetwork en0": "Current Wi-Fi Network: Home 5G\n",
	})
	info := NewNetworkProbe(run, nil).Info(context.Background())

	assert.Equal(t, NetworkInfo{
		InterfaceType: "WiFi",
		NetworkName:   "Home 5G",
		LocalIP:       "192.168.1.23",
		PublicIP:      Unknown,
		MAC:           "A4:83:E7:1B:22:9C",
		Gateway:       "192.168.1.1",
	}, info)
}

func TestNetworkInfo_Ethernet(t *testing.T) {
	run := exec.NewScripted(map[string]string{
		"route -n get default":                routeWiFi,
		"ifconfig en0":                        ifconfigEn0,
		"networksetup -getairportnetwork en0": "en0 is not a Wi-Fi interface.\n",
	})
	info := NewNetworkProbe(run, nil).Info(context.Background())

	assert.Equal(t, "Ethernet", info.InterfaceType)
	assert.Equal(t, "en0", info.NetworkName)
}

func TestNetworkInfo_VPNUsesPhysicalInterface(t *testing.T) {
	run := exec.NewScripted(map[string]string{
		"route -n get default":                  routeVPN,
		"networksetup -listnetworkserviceorder": serviceOrder,
		"ifconfig en0":                          ifconfigEn0,
		"networksetup -getinfo Wi-Fi":           "DHCP Configuration\nIP address: 192.168.1.23\nRouter: 192.168.1.254\n",
		"networksetup -getairportnetwork en0":   "Current Wi-Fi Network: Office\n",
	})
	info := NewNetworkProbe(run, nil).Info(context.Background())

	assert.True(t, info.VPN)
	assert.Equal(t, "192.168.1.23", info.LocalIP)
	assert.Equal(t, "192.168.1.254", info.Gateway)
	assert.Equal(t, "Office", info.NetworkName)
}

func TestNetworkInfo_VPNScansInterfaces(t *testing.T) {
	run := exec.NewScripted(map[string]string{
		"route -n get default": routeVPN,
		"ifconfig en0":         ifconfigInactive,
		"ifconfig en1":         ifconfigInactive,
		"ifconfig en2":         ifconfigEn0,
	})
	info := NewNetworkProbe(run, nil).Info(context.Background())

	assert.Equal(t, "192.168.1.23", info.LocalIP)
	assert.Equal(t, Unknown, info.Gateway)
	assert.Equal(t, "Ethernet", info.InterfaceType)
	assert.Equal(t, "en2", info.NetworkName)
}

func TestNetworkInfo_Unavailable(t *testing.T) {
	info := NewNetworkProbe(exec.NewScripted(nil), nil).Info(context.Background())
	for k, v := range info.Wire() {
		assert.Equal(t, Unknown, v, k)
	}
}

func TestInterfaceClassification(t *testing.T) {
	assert.True(t, IsVPN("utun3"))
	assert.True(t, IsVPN("ipsec0"))
	assert.False(t, IsVPN("en0"))

	for in, want := range map[string]string{
		"en5": "Ethernet", "bridge100": "Bridge", "vmnet8": "VMware", "vnic0": "Virtual", "awdl0": "awdl0",
	} {
		assert.Equal(t, want, InterfaceType(in), in)
	}
}

func TestPopoverData(t *testing.T) {
	run := exec.NewScripted(map[string]string{
		exec.CommandLine("ps", psArgs["darwin"][MetricCPU]...): psCPUOutput,
		"route -n get default":             routeWiFi,
		"ifconfig en0":                     ifconfigEn0,
	})
	r := &Resolver{
		Ranker:  newTestRanker(run, nil),
		Network: NewNetworkProbe(run, nil),
		Limit:   1,
	}
	ctx := context.Background()

	cpu := r.PopoverData(ctx, "cpu")
	assert.Equal(t, "cpu", cpu["itemId"])
	assert.Equal(t, false, cpu["isLoading"])
	assert.Equal(t, []map[string]any{{"pid": 412, "name": "Safari", "cpu": 37.5}}, cpu["processes"])
	assert.NotContains(t, cpu, "networkInfo")

	net := r.PopoverData(ctx, "network")
	require.Contains(t, net, "networkInfo")
	assert.Equal(t, "192.168.1.23", net["networkInfo"].(map[string]string)["localIp"])

	other := r.PopoverData(ctx, "weather")
	assert.Equal(t, []map[string]any{}, other["processes"])
}

func TestReadPowerSupplies(t *testing.T) {
	write := func(t *testing.T, dir, name, content string) {
		t.Helper()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, name), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name, "uevent"), []byte(content), 0o644))
	}

	t.Run("battery on mains", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "BAT0", "POWER_SUPPLY_TYPE=Battery\nPOWER_SUPPLY_PRESENT=1\nPOWER_SUPPLY_CAPACITY=77\n")
		write(t, dir, "AC", "POWER_SUPPLY_TYPE=Mains\nPOWER_SUPPLY_ONLINE=1\n")
		b, err := readPowerSupplies(dir)
		require.NoError(t, err)
		assert.Equal(t, Battery{Level: 77, OnACPower: true}, b)
	})

	t.Run("energy counters", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "BAT1", "POWER_SUPPLY_TYPE=Battery\nPOWER_SUPPLY_ENERGY_NOW=30000\nPOWER_SUPPLY_ENERGY_FULL=40000\n")
		b, err := readPowerSupplies(dir)
		require.NoError(t, err)
		assert.Equal(t, Battery{Level: 75}, b)
	})

	t.Run("desktop", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "AC", "POWER_SUPPLY_TYPE=Mains\nPOWER_SUPPLY_ONLINE=1\n")
		b, err := readPowerSupplies(dir)
		require.NoError(t, err)
		assert.Equal(t, Battery{Level: NoBattery}, b)
	})

	t.Run("missing dir", func(t *testing.T) {
		_, err := readPowerSupplies(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})
}
