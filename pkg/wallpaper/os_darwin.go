//go:build darwin

package wallpaper

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
)

// resolutionRegex matches strings like "3456 x 2234" or "2880 x 1864 Retina".
var resolutionRegex = regexp.MustCompile(`(\d+)\s*x\s*(\d+)`)

// macOSOS implements the OS interface for macOS.
type macOSOS struct{}

func getOS() OS {
	return &macOSOS{}
}

// setWallpaper sets the desktop picture of every desktop.
func (m *macOSOS) setWallpaper(imagePath string) error {
	script := fmt.Sprintf(`tell application "System Events" to tell every desktop to set picture to POSIX file %q`, imagePath)
	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		return fmt.Errorf("failed to set wallpaper: %w", err)
	}
	return nil
}

type systemProfilerOutput struct {
	Displays []struct {
		NDRVs []struct {
			Resolution string `json:"_spdisplays_pixels"`
			Main       string `json:"spdisplays_main"`
		} `json:"spdisplays_ndrvs"`
	} `json:"SPDisplaysDataType"`
}

// getDesktopDimension returns the size of the main display.
func (m *macOSOS) getDesktopDimension() (int, int, error) {
	out, err := exec.Command("system_profiler", "SPDisplaysDataType", "-json").Output()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to run system_profiler: %w", err)
	}

	var profiler systemProfilerOutput
	if err := json.Unmarshal(out, &profiler); err != nil {
		return 0, 0, fmt.Errorf("decoding system_profiler JSON: %w", err)
	}

	fallback := ""
	for _, gpu := range profiler.Displays {
		for _, display := range gpu.NDRVs {
			if display.Main == "spdisplays_yes" {
				return parseResolution(display.Resolution)
			}
			if fallback == "" {
				fallback = display.Resolution
			}
		}
	}
	if fallback != "" {
		return parseResolution(fallback)
	}
	return 0, 0, fmt.Errorf("no displays found in system_profiler output")
}

func parseResolution(s string) (int, int, error) {
	matches := resolutionRegex.FindStringSubmatch(s)
	if len(matches) < 3 {
		return 0, 0, fmt.Errorf("failed to parse resolution from string: %s", s)
	}
	width, _ := strconv.Atoi(matches[1])
	height, _ := strconv.Atoi(matches[2])
	return width, height, nil
}
