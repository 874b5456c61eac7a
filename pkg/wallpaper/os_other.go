//go:build !linux && !darwin && !windows

package wallpaper

import "errors"

var errUnsupported = errors.New("setting the wallpaper is not supported on this platform")

type unsupportedOS struct{}

func getOS() OS {
	return unsupportedOS{}
}

func (unsupportedOS) setWallpaper(string) error {
	return errUnsupported
}

func (unsupportedOS) getDesktopDimension() (int, int, error) {
	return 0, 0, errUnsupported
}
