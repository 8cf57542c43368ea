package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"wander/cmd"
	"wander/internal/db"
	"wander/internal/location"
	"wander/internal/logger"
	"wander/internal/model"
	"wander/internal/orchestrator"
	"wander/internal/router"
	"wander/internal/search"
	"wander/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := cmd.ParseFlags(version)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  logger.LogLevel(config.LogLevel),
		Output: config.LogFile,
	})
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer log.Close()
	log.WithField("version", version).Info("starting wander")

	provider, photos, err := buildProvider(config, log)
	if err != nil {
		return err
	}

	database, err := db.Open(config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	var position orchestrator.PositionSource = location.NoPosition{}
	if config.Position != "" {
		p, err := location.ParsePosition(config.Position)
		if err != nil {
			return err
		}
		position = location.FixedPosition{Point: p}
	}
	boot := orchestrator.NewBoot(position, log)
	defer boot.Shutdown()

	initial := make(map[string][]string)
	if config.Lat != "" {
		initial[location.ParamLat] = []string{config.Lat}
		initial[location.ParamLng] = []string{config.Lng}
	}

	m, err := ui.New(ui.Config{
		Provider:   provider,
		Photos:     photos,
		Favorites:  db.NewFavoritesSource(database, log),
		Boot:       boot,
		Router:     router.New(initial),
		Log:        log,
		Narrow:     config.Narrow,
		AutoSearch: config.AutoSearch,
		Defaults: ui.SearchDefaults{
			Radius: config.Radius,
			Type:   model.SearchType(config.Type),
		},
		PrefsPath: ui.PrefsPath(config.ConfigDir),
		Terminal:  ui.DetectTerminalCapabilities(),
	})
	if err != nil {
		return err
	}
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}

// buildProvider returns the configured places provider behind the page
// cache. A missing provider is not fatal: the map and favorites still work.
func buildProvider(config *cmd.Config, log *logger.Logger) (search.Provider, search.PhotoProvider, error) {
	var next search.Provider
	switch config.Provider {
	case cmd.ProviderGoogle:
		if config.GoogleAPIKey == "" {
			fmt.Fprintln(os.Stderr, "ℹ  No GOOGLE_MAPS_API_KEY set, search disabled")
			break
		}
		g, err := search.NewGoogleProvider(config.GoogleAPIKey)
		if err != nil {
			return nil, nil, err
		}
		next = g
	case cmd.ProviderYelp:
		if config.YelpAPIKey == "" {
			fmt.Fprintln(os.Stderr, "ℹ  No YELP_API_KEY set, search disabled")
			break
		}
		next = search.NewYelpClient(config.YelpAPIKey)
	case cmd.ProviderElastic:
		es, err := search.NewElasticProvider(config.ElasticURL, config.ElasticIndex, log)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = es.EnsureIndex(ctx)
		cancel()
		if err != nil {
			return nil, nil, err
		}
		next = es
	default:
		fmt.Fprintln(os.Stderr, "ℹ  No places provider configured, search disabled")
	}

	if next == nil {
		log.Warn("no places provider, search disabled")
		return search.Unavailable(), nil, nil
	}
	log.WithField("provider", config.Provider).Info("places provider ready")

	cached, err := search.NewCachedProvider(next, config.CacheSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create page cache: %w", err)
	}
	if _, ok := next.(search.PhotoProvider); !ok {
		return cached, nil, nil
	}
	return cached, cached, nil
}
