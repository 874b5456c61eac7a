//go:build windows

package netstate

import (
	"unsafe"

	"github.com/ulmus/onweekdays/pkg/artsource"
	"github.com/ulmus/onweekdays/util/log"
	"golang.org/x/sys/windows"
)

// Values from ipifcons.h and iptypes.h.
const (
	gaaFlagIncludeGateways = 0x80
	ifOperStatusUp         = 1

	ifTypePPP       = 23
	ifTypeIEEE80211 = 71
	ifTypeWWANPP    = 243
	ifTypeWWANPP2   = 244
)

type adapter struct {
	IfType     uint32
	Up         bool
	HasGateway bool
}

// DefaultRouteLink classifies the first adapter that is up and has a default gateway.
func DefaultRouteLink() artsource.NetworkType {
	adapters, err := listAdapters()
	if err != nil {
		log.Debugf("netstate: GetAdaptersAddresses: %v", err)
		return artsource.NetworkUnknown
	}
	return classify(adapters)
}

func listAdapters() ([]adapter, error) {
	size := uint32(15000)
	var buf []byte
	for {
		buf = make([]byte, size)
		aa := (*windows.IpAdapterAddresses)(unsafe.Pointer(&buf[0]))
		err := windows.GetAdaptersAddresses(windows.AF_UNSPEC, gaaFlagIncludeGateways, 0, aa, &size)
		if err == nil {
			break
		}
		if err != windows.ERROR_BUFFER_OVERFLOW || size <= uint32(len(buf)) {
			return nil, err
		}
	}

	var adapters []adapter
	for aa := (*windows.IpAdapterAddresses)(unsafe.Pointer(&buf[0])); aa != nil; aa = aa.Next {
		adapters = append(adapters, adapter{
			IfType:     aa.IfType,
			Up:         aa.OperStatus == ifOperStatusUp,
			HasGateway: aa.FirstGatewayAddress != nil,
		})
	}
	return adapters, nil
}

func classify(adapters []adapter) artsource.NetworkType {
	for _, a := range adapters {
		if !a.Up || !a.HasGateway {
			continue
		}
		switch a.IfType {
		case ifTypeIEEE80211:
			return artsource.NetworkWiFi
		case ifTypeWWANPP, ifTypeWWANPP2, ifTypePPP:
			return artsource.NetworkCellular
		default:
			return artsource.NetworkEthernet
		}
	}
	return artsource.NetworkUnknown
}
