// Package ui provides the system tray front end of OnWeekdays.
package ui

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/ulmus/onweekdays/config"
	"github.com/ulmus/onweekdays/pkg/artsource"
	"github.com/ulmus/onweekdays/util"
	"github.com/ulmus/onweekdays/util/log"
)

// Controller is the part of the scheduler the tray drives.
type Controller interface {
	Next() bool
	Reschedule()
}

// UpdateChecker looks for a newer release.
type UpdateChecker func(ctx context.Context) (*util.UpdateInfo, error)

// TrayApp is the tray menu and notification publisher.
type TrayApp struct {
	app        fyne.App
	cfg        *config.AppConfig
	controller Controller
	checker    UpdateChecker
	checking   *util.SafeFlag

	trayMenu      *fyne.Menu
	currentItem   *fyne.MenuItem
	viewItem      *fyne.MenuItem
	wifiItem      *fyne.MenuItem
	notifyItem    *fyne.MenuItem
	intervalItems map[int]*fyne.MenuItem

	mu      sync.Mutex
	current *artsource.Artwork
}

// NewTrayApp builds the tray menu. Call Install to show it.
func NewTrayApp(a fyne.App, cfg *config.AppConfig, controller Controller, checker UpdateChecker) *TrayApp {
	t := &TrayApp{
		app:           a,
		cfg:           cfg,
		controller:    controller,
		checker:       checker,
		checking:      util.NewSafeFlag(false),
		intervalItems: make(map[int]*fyne.MenuItem),
	}
	t.trayMenu = t.createTrayMenu()
	return t
}

// Install shows the tray icon and menu. It returns false when the platform has no tray.
func (t *TrayApp) Install() bool {
	icon := trayIcon()
	t.app.SetIcon(icon)

	desk, ok := t.app.(desktop.App)
	if !ok {
		log.Println("Tray icon not supported on this platform")
		return false
	}
	desk.SetSystemTrayMenu(t.trayMenu)
	desk.SetSystemTrayIcon(icon)
	return true
}

func (t *TrayApp) createTrayMenu() *fyne.Menu {
	t.currentItem = fyne.NewMenuItem("No artwork yet", nil)
	t.currentItem.Disabled = true

	t.viewItem = fyne.NewMenuItem("View on "+config.AppName, t.viewCurrent)
	t.viewItem.Disabled = true

	t.wifiItem = fyne.NewMenuItem("Only on Wi-Fi", func() {
		t.cfg.SetWifiOnly(!t.cfg.GetWifiOnly())
		t.controller.Reschedule()
		t.Refresh()
	})

	var intervals []*fyne.MenuItem
	for _, hours := range config.IntervalChoices {
		item := fyne.NewMenuItem(intervalLabel(hours), func() {
			if err := t.cfg.SetIntervalHours(hours); err != nil {
				log.Printf("Failed to set interval: %v", err)
				return
			}
			t.controller.Reschedule()
			t.Refresh()
		})
		t.intervalItems[hours] = item
		intervals = append(intervals, item)
	}
	intervalMenu := fyne.NewMenuItem("Change Every", nil)
	intervalMenu.ChildMenu = fyne.NewMenu("", intervals...)

	t.notifyItem = fyne.NewMenuItem("Notifications", func() {
		t.cfg.SetAppNotificationsEnabled(!t.cfg.GetAppNotificationsEnabled())
		t.Refresh()
	})

	menu := fyne.NewMenu(
		config.AppName,
		t.currentItem,
		fyne.NewMenuItem("Next Artwork", func() {
			if !t.controller.Next() {
				t.notify("Please wait", "A new artwork was requested a moment ago.")
			}
		}),
		t.viewItem,
		fyne.NewMenuItemSeparator(),
		t.wifiItem,
		intervalMenu,
		t.notifyItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Check for Updates", func() {
			go t.CheckForUpdates(context.Background(), true)
		}),
		fyne.NewMenuItem("Quit", func() {
			t.app.Quit()
		}),
	)
	t.trayMenu = menu
	t.refreshItems()
	return menu
}

func intervalLabel(hours int) string {
	if hours == 1 {
		return "1 hour"
	}
	return strconv.Itoa(hours) + " hours"
}

// Refresh syncs the check marks with the preferences. Safe to call from any goroutine.
func (t *TrayApp) Refresh() {
	fyne.Do(func() {
		t.refreshItems()
		t.trayMenu.Refresh()
	})
}

func (t *TrayApp) refreshItems() {
	t.wifiItem.Checked = t.cfg.GetWifiOnly()
	t.notifyItem.Checked = t.cfg.GetAppNotificationsEnabled()
	current := t.cfg.GetIntervalHours()
	for hours, item := range t.intervalItems {
		item.Checked = hours == current
	}

	t.mu.Lock()
	art := t.current
	t.mu.Unlock()
	if art != nil {
		t.currentItem.Label = artworkLabel(*art)
		t.viewItem.Disabled = art.ViewURI == ""
	}
}

func artworkLabel(art artsource.Artwork) string {
	switch {
	case art.Title != "" && art.Byline != "":
		return fmt.Sprintf("%s by %s", art.Title, art.Byline)
	case art.Title != "":
		return art.Title
	case art.Byline != "":
		return "Photo by " + art.Byline
	default:
		return "Untitled"
	}
}

// SetCurrent shows art as the current artwork without a notification.
func (t *TrayApp) SetCurrent(art *artsource.Artwork) {
	if art == nil {
		return
	}
	t.mu.Lock()
	a := *art
	t.current = &a
	t.mu.Unlock()
	t.Refresh()
}

// Publish updates the menu and, if enabled, shows a desktop notification.
func (t *TrayApp) Publish(ctx context.Context, art artsource.Artwork) error {
	t.SetCurrent(&art)
	t.notify("New artwork", artworkLabel(art))
	return nil
}

func (t *TrayApp) notify(title, content string) {
	if !t.cfg.GetAppNotificationsEnabled() {
		return
	}
	t.app.SendNotification(fyne.NewNotification(title, content))
}

func (t *TrayApp) viewCurrent() {
	t.mu.Lock()
	art := t.current
	t.mu.Unlock()
	if art == nil || art.ViewURI == "" {
		return
	}

	u, err := url.Parse(art.ViewURI)
	if err != nil {
		log.Printf("Invalid artwork page %q: %v", art.ViewURI, err)
		return
	}
	if err := t.app.OpenURL(u); err != nil {
		log.Printf("Failed to open artwork page: %v", err)
	}
}

// CheckForUpdates runs the update check. With manual set the result is always reported.
func (t *TrayApp) CheckForUpdates(ctx context.Context, manual bool) {
	if t.checker == nil {
		return
	}
	if !t.checking.CompareAndSwap(false, true) {
		log.Debug("Update check already running")
		return
	}
	defer t.checking.Set(false)

	info, err := t.checker(ctx)
	if err != nil {
		log.Printf("Update check failed: %v", err)
		if manual {
			t.notify("Update check failed", err.Error())
		}
		return
	}

	if !info.UpdateAvailable {
		log.Printf("%s %s is up to date", config.AppName, info.CurrentVersion)
		if manual {
			t.notify("No update available", fmt.Sprintf("%s %s is the latest version.", config.AppName, info.CurrentVersion))
		}
		return
	}

	log.Printf("Update available: %s -> %s", info.CurrentVersion, info.LatestVersion)
	t.notify("Update available", fmt.Sprintf("%s %s is available.", config.AppName, info.LatestVersion))
	if manual && info.ReleaseURL != "" {
		if u, err := url.Parse(info.ReleaseURL); err == nil {
			if err := t.app.OpenURL(u); err != nil {
				log.Printf("Failed to open release page: %v", err)
			}
		}
	}
}
