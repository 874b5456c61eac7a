//go:build windows

package netstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ulmus/onweekdays/pkg/artsource"
)

func TestClassify(t *testing.T) {
	const ethernet = 6

	tests := []struct {
		name     string
		adapters []adapter
		want     artsource.NetworkType
	}{
		{"Wi-Fi with gateway", []adapter{{IfType: ethernet, Up: true}, {IfType: ifTypeIEEE80211, Up: true, HasGateway: true}}, artsource.NetworkWiFi},
		{"Ethernet with gateway", []adapter{{IfType: ethernet, Up: true, HasGateway: true}, {IfType: ifTypeIEEE80211, Up: true}}, artsource.NetworkEthernet},
		{"Mobile broadband", []adapter{{IfType: ifTypeWWANPP, Up: true, HasGateway: true}}, artsource.NetworkCellular},
		{"Wi-Fi down", []adapter{{IfType: ifTypeIEEE80211, HasGateway: true}}, artsource.NetworkUnknown},
		{"No adapters", nil, artsource.NetworkUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.adapters))
		})
	}
}

func TestDefaultRouteLinkRuns(t *testing.T) {
	_ = DefaultRouteLink()
}
