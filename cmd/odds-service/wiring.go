package main

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/Vodeneev/keirin-odds/internal/browser"
	"github.com/Vodeneev/keirin-odds/internal/odds"
	"github.com/Vodeneev/keirin-odds/internal/odds/venues"
	"github.com/Vodeneev/keirin-odds/internal/pkg/config"
	"github.com/Vodeneev/keirin-odds/internal/pkg/logging"
	"github.com/Vodeneev/keirin-odds/internal/pkg/performance"
)

func loadConfig(configPath string, logOut io.Writer) (*config.Config, *logrus.Entry, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logging.SetupLoggerWithOutput(&cfg.Logging, serviceName, logOut)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	log.WithField("path", configPath).Debug("Config loaded")
	return cfg, log, nil
}

func serviceOptions(cfg *config.Config) (odds.Options, error) {
	window, err := odds.NewWindow(cfg.Schedule.Open, cfg.Schedule.Close)
	if err != nil {
		return odds.Options{}, fmt.Errorf("schedule: %w", err)
	}
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return odds.Options{}, err
	}

	return odds.Options{
		Window:   window,
		Location: loc,
		URL: odds.URLBuilder{
			BaseURL:  cfg.Odds.BaseURL,
			OddsType: cfg.Odds.OddsType,
		},
		TableSelector:     cfg.Odds.TableSelector,
		MaxRows:           cfg.Odds.MaxRows,
		NavigationTimeout: cfg.Odds.NavigationTimeout,
		SelectorTimeout:   cfg.Odds.SelectorTimeout,
		ExtractTimeout:    cfg.Odds.ExtractTimeout,
		MaxPages:          cfg.Browser.MaxPages,
	}, nil
}

func browserOptions(cfg *config.BrowserConfig) browser.Options {
	return browser.Options{
		Headless:         cfg.Headless,
		NoSandbox:        cfg.NoSandbox,
		UserAgent:        cfg.UserAgent,
		ExecPath:         cfg.ExecPath,
		BlockedResources: cfg.BlockedResources,
		Debug:            cfg.Debug,
	}
}

// startService launches Chrome and builds the odds pipeline on top of it.
// The caller owns the returned browser and must close it.
func startService(cfg *config.Config, log *logrus.Entry) (*odds.Service, *browser.Browser, error) {
	opts, err := serviceOptions(cfg)
	if err != nil {
		return nil, nil, err
	}

	table, err := venues.Default()
	if err != nil {
		return nil, nil, fmt.Errorf("load venues: %w", err)
	}

	b, err := browser.Launch(browserOptions(&cfg.Browser), log.WithField("component", "browser"))
	if err != nil {
		return nil, nil, err
	}

	svc := odds.NewService(table, b, opts, performance.NewTracker(), log.WithField("component", "odds"))
	log.WithFields(logrus.Fields{
		"venues":    table.Len(),
		"window":    opts.Window.String(),
		"max_pages": opts.MaxPages,
	}).Info("Odds service ready")
	return svc, b, nil
}

func closeBrowser(b *browser.Browser, log logrus.FieldLogger) {
	if err := b.Close(); err != nil {
		log.WithError(err).Warn("Failed to close browser")
	}
}
