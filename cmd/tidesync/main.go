package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v3"

	"github.com/Marqogram/TidepoolToNightScoutSync/internal/config"
	"github.com/Marqogram/TidepoolToNightScoutSync/internal/journal"
	"github.com/Marqogram/TidepoolToNightScoutSync/internal/nightscout"
	"github.com/Marqogram/TidepoolToNightScoutSync/internal/syncer"
	"github.com/Marqogram/TidepoolToNightScoutSync/internal/tidepool"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	fs := flag.NewFlagSet("tidesync", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "config.yaml", "path to YAML config file")
		sinceFlag  = fs.String("since", "", "window start (2006-01-02 or RFC3339; default: start of today)")
		tillFlag   = fs.String("till", "", "window end (2006-01-02 or RFC3339; default: open)")
		only       = fs.String("only", "profiles,treatments,entries", "comma-separated operations to run")
		journalDir = fs.String("journal-dir", "", "sync journal directory (default: ~/.tidesync)")
		history    = fs.Int("history", 0, "print the N most recent journal runs and exit")
		version    = fs.Bool("version", false, "print version and exit")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("TIDESYNC")); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *version {
		fmt.Println("tidesync", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	jnl, err := openJournal(*journalDir)
	if err != nil {
		log.Error("failed to open journal", "error", err)
		os.Exit(1)
	}
	defer jnl.Close()

	if *history > 0 {
		printHistory(jnl, *history)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	since, err := parseTime(*sinceFlag)
	if err != nil {
		log.Error("invalid -since", "value", *sinceFlag, "error", err)
		os.Exit(1)
	}
	till, err := parseTime(*tillFlag)
	if err != nil {
		log.Error("invalid -till", "value", *tillFlag, "error", err)
		os.Exit(1)
	}

	factory := func(ctx context.Context) (syncer.Source, error) {
		client := tidepool.NewClient(cfg.Tidepool.BaseURL, cfg.Tidepool.Username, cfg.Tidepool.Password)
		if err := client.Login(ctx); err != nil {
			return nil, err
		}
		return client, nil
	}
	dest := nightscout.NewClient(cfg.Nightscout.BaseURL, cfg.Nightscout.APISecret)

	s := syncer.New(factory, dest, syncer.Options{
		Since:     since,
		Till:      till,
		TargetLow: cfg.Sync.TargetLow,
		EnteredBy: cfg.Sync.EnteredBy,
		Device:    cfg.Sync.Device,
	})

	ctx := context.Background()
	failed := false
	for _, op := range strings.Split(*only, ",") {
		op = strings.TrimSpace(op)
		if op == "" {
			continue
		}
		if err := runOperation(ctx, log, jnl, s, op, *sinceFlag, *tillFlag); err != nil {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
	log.Info("sync complete")
}

// runOperation executes one sync operation, logs the outcome and appends a
// journal row.
func runOperation(ctx context.Context, log *slog.Logger, jnl *journal.Journal, s *syncer.Syncer, op, since, till string) error {
	started := time.Now()
	var records int
	var err error

	switch op {
	case "profiles":
		p, perr := s.SyncProfiles(ctx)
		err = perr
		if p != nil {
			records = 1
			log.Info("profile upserted", "mills", p.Mills, "updated", p.ID != "")
		} else if perr == nil {
			log.Info("no pump settings in window, profile sync skipped")
		}
	case "treatments":
		records, err = s.SyncTreatments(ctx)
		if err == nil {
			log.Info("treatments pushed", "count", records)
		}
	case "entries":
		records, err = s.SyncEntries(ctx)
		if err == nil {
			log.Info("entries pushed", "count", records)
		}
	default:
		err = fmt.Errorf("unknown operation %q", op)
	}

	run := journal.Run{
		Operation:  op,
		Since:      since,
		Till:       till,
		Records:    records,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err != nil {
		run.Error = err.Error()
		log.Error("sync operation failed", "operation", op, "error", err)
	}
	if _, jerr := jnl.Record(run); jerr != nil {
		log.Warn("failed to record journal run", "operation", op, "error", jerr)
	}
	return err
}

func openJournal(dir string) (*journal.Journal, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, ".tidesync")
	}
	return journal.Open(dir)
}

func printHistory(jnl *journal.Journal, limit int) {
	runs, err := jnl.Runs(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	for _, r := range runs {
		status := "ok"
		if r.Error != "" {
			status = "error: " + r.Error
		}
		fmt.Printf("%s  %-10s  records=%-5d  %s\n",
			r.StartedAt.Local().Format(time.RFC3339), r.Operation, r.Records, status)
	}
}

// parseTime accepts a date or an RFC3339 timestamp. Empty input stays the
// zero time so the syncer applies its window defaults.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
