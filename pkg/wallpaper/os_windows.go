//go:build windows

package wallpaper

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	systemParametersInfo = user32.NewProc("SystemParametersInfoW")
	getSystemMetrics     = user32.NewProc("GetSystemMetrics")
)

// Windows API constants
const (
	spiSetDeskWallpaper = 0x0014
	spifUpdateIniFile   = 0x01
	spifSendChange      = 0x02
	smCXScreen          = 0
	smCYScreen          = 1
)

// windowsOS implements the OS interface for Windows.
type windowsOS struct{}

func getOS() OS {
	return &windowsOS{}
}

// setWallpaper sets the wallpaper to the given image file path.
func (w *windowsOS) setWallpaper(imagePath string) error {
	path, err := windows.UTF16PtrFromString(imagePath)
	if err != nil {
		return err
	}

	ret, _, err := systemParametersInfo.Call(
		uintptr(spiSetDeskWallpaper),
		0,
		uintptr(unsafe.Pointer(path)),
		uintptr(spifUpdateIniFile|spifSendChange),
	)
	if ret == 0 {
		return err
	}
	return nil
}

// getDesktopDimension returns the primary screen size in pixels.
func (w *windowsOS) getDesktopDimension() (int, int, error) {
	if err := getSystemMetrics.Find(); err != nil {
		return 0, 0, err
	}
	width, _, _ := getSystemMetrics.Call(smCXScreen)
	height, _, _ := getSystemMetrics.Call(smCYScreen)
	return int(width), int(height), nil
}
