//go:build linux

package wallpaper

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// linuxOS implements the OS interface for Linux desktops.
type linuxOS struct{}

func getOS() OS {
	return &linuxOS{}
}

// setWallpaper sets the desktop wallpaper on Linux, supporting X11 and some Wayland compositors.
func (l *linuxOS) setWallpaper(imagePath string) error {
	desktopEnv := os.Getenv("XDG_CURRENT_DESKTOP")
	if desktopEnv == "" {
		desktopEnv = os.Getenv("DESKTOP_SESSION")
	}
	desktopEnv = strings.ToLower(desktopEnv)

	switch {
	case strings.Contains(desktopEnv, "gnome"), strings.Contains(desktopEnv, "unity"), strings.Contains(desktopEnv, "cinnamon"):
		return l.setWallpaperGNOME(imagePath)
	case strings.Contains(desktopEnv, "xfce"):
		return exec.Command("xfconf-query",
			"--channel", "xfce4-desktop",
			"--property", "/backdrop/screen0/monitor0/workspace0/last-image",
			"--set", imagePath).Run()
	case strings.Contains(desktopEnv, "sway"):
		return exec.Command("swaymsg", "output", "*", "bg", imagePath, "fill").Run()
	default:
		return fmt.Errorf("unsupported desktop environment: %q", desktopEnv)
	}
}

func (l *linuxOS) setWallpaperGNOME(imagePath string) error {
	uri := "file://" + imagePath
	for _, key := range []string{"picture-uri", "picture-uri-dark"} {
		if err := exec.Command("gsettings", "set", "org.gnome.desktop.background", key, uri).Run(); err != nil && key == "picture-uri" {
			return fmt.Errorf("gsettings: %w", err)
		}
	}
	return nil
}

// getDesktopDimension returns the screen size reported by xdpyinfo.
func (l *linuxOS) getDesktopDimension() (int, int, error) {
	out, err := exec.Command("xdpyinfo").Output()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get screen resolution: %w", err)
	}
	return parseXdpyinfo(string(out))
}

// parseXdpyinfo extracts the size from a line like "dimensions:    1920x1080 pixels (508x285 millimeters)".
func parseXdpyinfo(out string) (int, int, error) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "dimensions:") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		w, h, ok := strings.Cut(parts[1], "x")
		if !ok {
			continue
		}
		width, errW := strconv.Atoi(w)
		height, errH := strconv.Atoi(h)
		if errW != nil || errH != nil {
			return 0, 0, fmt.Errorf("failed to parse screen resolution %q", parts[1])
		}
		return width, height, nil
	}
	return 0, 0, fmt.Errorf("failed to parse screen resolution")
}
