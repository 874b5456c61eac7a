//go:build !linux && !darwin && !windows

package netstate

import "github.com/ulmus/onweekdays/pkg/artsource"

// DefaultRouteLink is not implemented on this platform.
func DefaultRouteLink() artsource.NetworkType {
	return artsource.NetworkUnknown
}
