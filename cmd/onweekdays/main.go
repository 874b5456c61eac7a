package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/ulmus/onweekdays/config"
	"github.com/ulmus/onweekdays/pkg/api"
	"github.com/ulmus/onweekdays/pkg/artsource"
	"github.com/ulmus/onweekdays/pkg/netstate"
	"github.com/ulmus/onweekdays/pkg/origin"
	"github.com/ulmus/onweekdays/pkg/store"
	"github.com/ulmus/onweekdays/pkg/wallpaper"
	"github.com/ulmus/onweekdays/ui"
	"github.com/ulmus/onweekdays/util"
	"github.com/ulmus/onweekdays/util/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to the config file (default ~/.onweekdays/config.json)")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", config.AppName, config.AppVersion)
		return
	}

	acquired, err := acquireLock()
	if err != nil {
		log.Fatalf("Failed to acquire single instance lock: %v", err)
	}
	if !acquired {
		log.Printf("Another instance of %s is already running.", config.AppName)
		return
	}
	defer releaseLock()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.ConfigPath != "" {
		log.Printf("Loaded configuration from %s", cfg.ConfigPath)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("%s stopped: %v", config.AppName, err)
	}
}

func run(cfg config.Config) error {
	a := app.NewWithID(config.AppID)
	prefs := config.NewAppConfig(a.Preferences())

	db, err := store.NewDatabase(cfg.StatePath())
	if err != nil {
		return fmt.Errorf("opening state database: %w", err)
	}
	defer db.Close()

	httpClient := origin.NewHTTPClient(cfg.UserAgent, cfg.RequestTimeout, prefs)
	client := origin.NewClient(cfg.PhotoURL(), httpClient)
	checker := netstate.NewChecker(cfg.ConnectivityURL, &http.Client{Timeout: netstate.CheckTimeout})

	source := artsource.NewSource(prefs, checker, client, db)
	scheduler := artsource.NewScheduler(source, db)

	imageClient := &http.Client{
		Timeout:   2 * time.Minute,
		Transport: &origin.UserAgentTransport{RoundTripper: http.DefaultTransport, UserAgent: cfg.UserAgent},
	}
	if cfg.SetWallpaper {
		source.AddPublisher(wallpaper.NewPublisher(imageClient, cfg.CacheDir()))
	}

	tray := ui.NewTrayApp(a, prefs, scheduler, func(ctx context.Context) (*util.UpdateInfo, error) {
		return util.CheckForUpdates(ctx, imageClient)
	})
	source.AddPublisher(tray)
	if current, err := db.CurrentArtwork(); err != nil {
		log.Printf("Failed to read current artwork: %v", err)
	} else {
		tray.SetCurrent(current)
	}

	var server *api.Server
	if cfg.APIEnabled {
		server = api.NewServer(cfg.APIAddr, db, scheduler, prefs)
		source.AddPublisher(server)
	}

	// Settings may also change through the API; keep the menu in sync.
	prefs.AddChangeListener(tray.Refresh)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scheduler.Run(ctx)
	})
	if server != nil {
		g.Go(func() error {
			if err := server.Run(ctx); err != nil {
				// The rotation keeps working without the local API.
				log.Printf("Local API stopped: %v", err)
			}
			return nil
		})
	}
	if prefs.GetUpdateCheckEnabled() {
		g.Go(func() error {
			tray.CheckForUpdates(ctx, false)
			return nil
		})
	}

	// Quit from the tray cancels the background work, and a signal quits the tray.
	go func() {
		<-ctx.Done()
		a.Quit()
	}()

	if !tray.Install() {
		log.Println("Running without a tray icon")
	}
	a.Run()
	stop()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Printf("%s exited", config.AppName)
	return nil
}
