package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rewired-gh/quantumscout/internal/circuit"
	"github.com/rewired-gh/quantumscout/internal/config"
	"github.com/rewired-gh/quantumscout/internal/logger"
	"github.com/rewired-gh/quantumscout/internal/models"
	"github.com/rewired-gh/quantumscout/internal/plot"
	"github.com/rewired-gh/quantumscout/internal/scout"
	"github.com/rewired-gh/quantumscout/internal/simulator"
	"github.com/rewired-gh/quantumscout/internal/storage"
	"github.com/rewired-gh/quantumscout/internal/tba"
	"github.com/rewired-gh/quantumscout/internal/telegram"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file (empty for defaults and environment only)")
	drawFlag   = flag.Bool("draw", false, "Print the circuit diagram")
	tableFlag  = flag.Bool("table", false, "Print every observed outcome and its probability")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Setup logging with level support
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	rotation, err := circuit.ParseRotation(cfg.Prediction.Rotation)
	if err != nil {
		logger.Fatal("Invalid rotation: %v", err)
	}

	// Initialize match cache
	clientCfg := tba.ClientConfig{
		MaxRetries:     cfg.TBA.MaxRetries,
		RetryDelayBase: cfg.TBA.RetryDelayBase,
	}
	if cfg.Cache.Enabled {
		store, err := storage.New(cfg.Cache.DBPath, cfg.Cache.MaxAge, cfg.Cache.MaxEntries)
		if err != nil {
			logger.Fatal("Failed to initialize match cache: %v", err)
		}
		defer func() {
			if err := store.Rotate(); err != nil {
				logger.Warn("Failed to rotate match cache: %v", err)
			}
			if err := store.Close(); err != nil {
				logger.Error("Failed to close match cache: %v", err)
			}
		}()
		clientCfg.Cache = store
		logger.Debug("Match cache enabled at %s (max age %v)", cfg.Cache.DBPath, cfg.Cache.MaxAge)
	}

	// Initialize Blue Alliance client
	tbaClient := tba.NewClient(cfg.TBA.APIBaseURL, cfg.TBA.AuthKey, cfg.TBA.Timeout, clientCfg)

	// Initialize Telegram client
	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram client initialized successfully")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cancelling run...")
		cancel()
	}()

	req := scout.Request{
		Event:      cfg.Prediction.Event,
		Teams:      [3]int{cfg.Prediction.Teams[0], cfg.Prediction.Teams[1], cfg.Prediction.Teams[2]},
		MatchCount: cfg.Prediction.MatchCount,
		Shots:      cfg.Prediction.Shots,
		Rotation:   rotation,
		Concurrent: cfg.Prediction.ConcurrentFetch,
	}
	logger.Info("Predicting %v at %s (matches: %d, shots: %d, rotation: %s)",
		cfg.Prediction.Teams, req.Event, req.MatchCount, req.Shots, rotation)

	sc := scout.New(tbaClient, simulator.New(cfg.Prediction.Seed))
	res, err := sc.Predict(ctx, req)
	if err != nil {
		logger.Fatal("Prediction failed: %v", err)
	}

	ranges := make([][2]int, len(cfg.Queries))
	for i, q := range cfg.Queries {
		ranges[i] = [2]int{q.Start, q.End}
	}
	report := scout.Report(req, res, ranges, cfg.Points)

	out := os.Stdout
	if *drawFlag {
		fmt.Fprintln(out, res.Circuit.Draw())
	}
	if *tableFlag {
		if err := plot.Table(out, res.Distribution.Series()); err != nil {
			logger.Error("Failed to print table: %v", err)
		}
	}
	if err := printReport(out, report); err != nil {
		logger.Error("Failed to print report: %v", err)
	}

	if cfg.Plot.Enabled {
		fmt.Fprintln(out)
		opts := plot.Options{Width: cfg.Plot.Width, Bins: cfg.Plot.Bins}
		if err := plot.Render(out, res.Distribution, opts); err != nil {
			logger.Warn("Failed to render plot: %v", err)
		}
	}

	if telegramClient != nil {
		if err := telegramClient.Send(report); err != nil {
			logger.Error("Failed to send Telegram notification: %v", err)
		} else {
			logger.Info("Sent prediction %s to Telegram", report.ID)
		}
	}
}

func printReport(w io.Writer, p *models.Prediction) error {
	if _, err := fmt.Fprintf(w, "%s\n", p.Alliance.Title()); err != nil {
		return err
	}
	fmt.Fprintf(w, "  run:         %s\n", p.ID)
	fmt.Fprintf(w, "  event:       %s\n", p.Event)
	fmt.Fprintf(w, "  thetas:      %.4f\n", p.Thetas)
	fmt.Fprintf(w, "  outcomes:    %d distinct over %d shots\n", p.DistinctOutcomes, p.Shots)
	fmt.Fprintf(w, "  most likely: %d (%.2f%%)\n", p.MostLikely, p.MostLikelyProb)

	for _, r := range p.Ranges {
		note := ""
		if r.EndMissing {
			note = "  (end not observed: summed to the last outcome)"
		}
		fmt.Fprintf(w, "  range(%d, %d): %.2f%%%s\n", r.Start, r.End, r.Probability, note)
	}
	for _, pt := range p.Points {
		fmt.Fprintf(w, "  score %d:    %.2f%%\n", pt.Value, pt.Probability)
	}
	return nil
}
