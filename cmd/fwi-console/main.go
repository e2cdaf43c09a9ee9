// Command fwi-console is an interactive client for the FWI prediction
// service. It keeps one session's inputs, counters and history, and can
// predict from live weather at a chosen coordinate.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/fire-weather-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/fire-weather-service/internal/adapter/predictor"
	"github.com/couchcryptid/fire-weather-service/internal/config"
	"github.com/couchcryptid/fire-weather-service/internal/observability"
	"github.com/couchcryptid/fire-weather-service/internal/session"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, "text")
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := predictor.NewClient(cfg.PredictorURL, cfg.PredictorTimeout)
	if err := client.Health(ctx); err != nil {
		printUnavailable(os.Stdout, cfg.PredictorURL)
		os.Exit(1)
	}

	weather := openmeteo.NewCachedWeather(
		openmeteo.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimeout, metrics, logger),
		cfg.WeatherCacheTTL, cfg.WeatherCacheSize, clock, metrics, logger,
	)
	mgr := session.NewManager(client, weather, clock, logger)

	c := &console{mgr: mgr, out: os.Stdout, serviceURL: cfg.PredictorURL}
	c.banner()

	ticker := clock.NewTicker(cfg.AutoPredictInterval)
	defer ticker.Stop()
	go func() {
		err := mgr.Run(ctx, ticker.Chan(), c.printAuto)
		if errors.Is(err, predictor.ErrUnavailable) {
			fmt.Fprintln(c.out)
			printUnavailable(c.out, cfg.PredictorURL)
			os.Exit(1)
		}
		if err != nil {
			logger.Error("auto-predict loop stopped", "error", err)
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		c.prompt()
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			quit, err := c.exec(ctx, line)
			if errors.Is(err, predictor.ErrUnavailable) {
				printUnavailable(c.out, cfg.PredictorURL)
				os.Exit(1)
			}
			if err != nil {
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
			if quit {
				return
			}
		}
	}
}
