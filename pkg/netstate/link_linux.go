//go:build linux

package netstate

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/ulmus/onweekdays/pkg/artsource"
	"github.com/ulmus/onweekdays/util/log"
	"golang.org/x/sys/unix"
)

// siocgiwname is the wireless extensions "get name" ioctl. It only succeeds on wireless interfaces.
const siocgiwname = 0x8B01

const routeTable = "/proc/net/route"

// DefaultRouteLink classifies the interface carrying the IPv4 default route.
func DefaultRouteLink() artsource.NetworkType {
	f, err := os.Open(routeTable)
	if err != nil {
		log.Debugf("netstate: %v", err)
		return artsource.NetworkUnknown
	}
	defer f.Close()

	iface, ok := defaultRouteInterface(f)
	if !ok {
		return artsource.NetworkUnknown
	}
	return classify(iface, isWireless)
}

// defaultRouteInterface returns the interface of the first default route in a /proc/net/route table.
func defaultRouteInterface(r io.Reader) (string, bool) {
	scanner := bufio.NewScanner(r)
	scanner.Scan() // header
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		if fields[1] == "00000000" {
			return fields[0], true
		}
	}
	return "", false
}

func classify(iface string, wireless func(string) bool) artsource.NetworkType {
	switch {
	case strings.HasPrefix(iface, "wwan"), strings.HasPrefix(iface, "ppp"), strings.HasPrefix(iface, "rmnet"):
		return artsource.NetworkCellular
	case wireless(iface):
		return artsource.NetworkWiFi
	default:
		return artsource.NetworkEthernet
	}
}

func isWireless(iface string) bool {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		log.Debugf("netstate: socket: %v", err)
		return false
	}
	defer unix.Close(fd)

	ifr, err := unix.NewIfreq(iface)
	if err != nil {
		return false
	}
	return unix.IoctlIfreq(fd, siocgiwname, ifr) == nil
}
