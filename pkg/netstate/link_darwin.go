//go:build darwin

package netstate

import (
	"bufio"
	"bytes"
	"io"
	"os/exec"
	"strings"

	"github.com/ulmus/onweekdays/pkg/artsource"
	"github.com/ulmus/onweekdays/util/log"
)

// DefaultRouteLink classifies the interface carrying the IPv4 default route.
func DefaultRouteLink() artsource.NetworkType {
	out, err := exec.Command("route", "-n", "get", "default").Output()
	if err != nil {
		log.Debugf("netstate: route: %v", err)
		return artsource.NetworkUnknown
	}
	iface, ok := defaultRouteInterface(bytes.NewReader(out))
	if !ok {
		return artsource.NetworkUnknown
	}

	out, err = exec.Command("networksetup", "-listallhardwareports").Output()
	if err != nil {
		log.Debugf("netstate: networksetup: %v", err)
		return artsource.NetworkUnknown
	}
	return classify(iface, hardwarePorts(bytes.NewReader(out)))
}

// defaultRouteInterface returns the "interface:" line of `route -n get default`.
func defaultRouteInterface(r io.Reader) (string, bool) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if ok && key == "interface" {
			if iface := strings.TrimSpace(value); iface != "" {
				return iface, true
			}
		}
	}
	return "", false
}

// hardwarePorts maps device names to hardware port names from `networksetup -listallhardwareports`.
func hardwarePorts(r io.Reader) map[string]string {
	ports := make(map[string]string)
	var port string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Hardware Port":
			port = value
		case "Device":
			if port != "" && value != "" {
				ports[value] = port
			}
			port = ""
		}
	}
	return ports
}

func classify(iface string, ports map[string]string) artsource.NetworkType {
	port, ok := ports[iface]
	if !ok {
		// VPN tunnels and bridges are not hardware ports.
		return artsource.NetworkUnknown
	}
	switch {
	case strings.Contains(port, "Wi-Fi"), strings.Contains(port, "AirPort"):
		return artsource.NetworkWiFi
	case strings.Contains(port, "iPhone"), strings.Contains(port, "Bluetooth"), strings.Contains(port, "Modem"):
		return artsource.NetworkCellular
	default:
		return artsource.NetworkEthernet
	}
}
