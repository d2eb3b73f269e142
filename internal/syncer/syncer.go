// Package syncer is the reconciliation engine: it pulls settings, events and
// glucose readings from Tidepool, reshapes them into Nightscout's schema and
// pushes them, reusing existing remote documents where an idempotency key
// matches.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Marqogram/TidepoolToNightScoutSync/internal/nightscout"
	"github.com/Marqogram/TidepoolToNightScoutSync/internal/tidepool"
	"github.com/Marqogram/TidepoolToNightScoutSync/internal/units"
)

// Source is the subset of the Tidepool client the syncer consumes.
type Source interface {
	PumpSettingsHistory(ctx context.Context, since, till time.Time) ([]tidepool.PumpSettings, error)
	Boluses(ctx context.Context, since, till time.Time) ([]tidepool.Bolus, error)
	Foods(ctx context.Context, since, till time.Time) ([]tidepool.Food, error)
	PhysicalActivities(ctx context.Context, since, till time.Time) ([]tidepool.PhysicalActivity, error)
	GlucoseReadings(ctx context.Context, since, till time.Time) ([]tidepool.CBG, error)
}

// Destination is the subset of the Nightscout client the syncer consumes.
type Destination interface {
	Profiles(ctx context.Context) ([]nightscout.Profile, error)
	UpsertProfile(ctx context.Context, profile nightscout.Profile) (nightscout.Profile, error)
	AddTreatments(ctx context.Context, treatments []nightscout.Treatment) ([]nightscout.Treatment, error)
	AddEntries(ctx context.Context, entries []nightscout.Entry) error
	Status(ctx context.Context) (nightscout.Status, error)
}

// SourceFactory produces an authenticated Source. The syncer calls it at most
// once per instance; the session it returns is shared by all operations.
type SourceFactory func(ctx context.Context) (Source, error)

// Options configures one syncer instance. A zero Since defaults to the start
// of the current day; a zero Till leaves the window open-ended.
type Options struct {
	Since     time.Time
	Till      time.Time
	TargetLow float64 // low bound of the BG target band
	EnteredBy string  // attribution label on treatments
	Device    string  // device label on entries
}

// Report summarizes one SyncAll invocation.
type Report struct {
	Profile    *nightscout.Profile // nil when no settings snapshot existed
	Treatments int
	Entries    int
}

// Syncer drives the three sync operations against one source session.
type Syncer struct {
	factory SourceFactory
	dest    Destination
	opts    Options

	mu  sync.Mutex
	src Source
}

// New creates a Syncer. EnteredBy and Device default to "Tidepool".
func New(factory SourceFactory, dest Destination, opts Options) *Syncer {
	if opts.EnteredBy == "" {
		opts.EnteredBy = "Tidepool"
	}
	if opts.Device == "" {
		opts.Device = "Tidepool"
	}
	return &Syncer{factory: factory, dest: dest, opts: opts}
}

// source returns the shared source session, creating it on first use. A
// failed creation is not cached; the next operation retries.
func (s *Syncer) source(ctx context.Context) (Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.src != nil {
		return s.src, nil
	}
	src, err := s.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating source session: %w", err)
	}
	s.src = src
	return src, nil
}

func (s *Syncer) window() (time.Time, time.Time) {
	since := s.opts.Since
	if since.IsZero() {
		now := time.Now()
		since = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
	return since, s.opts.Till
}

// SyncProfiles builds a profile document from the pump settings history and
// upserts it. Returns nil without error when the history is empty (nothing to
// write). A Mills match against an existing remote profile turns the write
// into an update.
func (s *Syncer) SyncProfiles(ctx context.Context) (*nightscout.Profile, error) {
	src, err := s.source(ctx)
	if err != nil {
		return nil, err
	}

	since, till := s.window()
	history, err := src.PumpSettingsHistory(ctx, since, till)
	if err != nil {
		return nil, err
	}

	profile := BuildProfile(history, s.opts.TargetLow)
	if profile == nil {
		return nil, nil
	}

	existing, err := s.dest.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	MatchExisting(profile, existing)

	upserted, err := s.dest.UpsertProfile(ctx, *profile)
	if err != nil {
		return nil, err
	}
	return &upserted, nil
}

// SyncTreatments merges the bolus, food and activity streams and appends the
// result. Returns the number of treatments pushed; an empty merge pushes
// nothing.
func (s *Syncer) SyncTreatments(ctx context.Context) (int, error) {
	src, err := s.source(ctx)
	if err != nil {
		return 0, err
	}

	since, till := s.window()
	boluses, err := src.Boluses(ctx, since, till)
	if err != nil {
		return 0, err
	}
	foods, err := src.Foods(ctx, since, till)
	if err != nil {
		return 0, err
	}
	activities, err := src.PhysicalActivities(ctx, since, till)
	if err != nil {
		return 0, err
	}

	merged := MergeTreatments(boluses, foods, activities, s.opts.EnteredBy)
	if len(merged) == 0 {
		return 0, nil
	}

	if _, err := s.dest.AddTreatments(ctx, merged); err != nil {
		return 0, err
	}
	return len(merged), nil
}

// SyncEntries converts CGM readings into the destination's configured unit
// (mg/dl when the status endpoint omits one) and appends them. An empty batch
// is never pushed.
func (s *Syncer) SyncEntries(ctx context.Context) (int, error) {
	src, err := s.source(ctx)
	if err != nil {
		return 0, err
	}

	status, err := s.dest.Status(ctx)
	if err != nil {
		return 0, err
	}
	unit := status.Settings.Units
	if unit == "" {
		unit = units.Mgdl
	}

	since, till := s.window()
	readings, err := src.GlucoseReadings(ctx, since, till)
	if err != nil {
		return 0, err
	}

	entries, err := MapEntries(readings, unit, s.opts.Device)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	if err := s.dest.AddEntries(ctx, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// SyncAll runs the three operations in order. A failure in one operation does
// not stop the others; the joined error carries every failure.
func (s *Syncer) SyncAll(ctx context.Context) (Report, error) {
	var report Report
	var errs []error

	profile, err := s.SyncProfiles(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("profiles: %w", err))
	} else {
		report.Profile = profile
	}

	n, err := s.SyncTreatments(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("treatments: %w", err))
	} else {
		report.Treatments = n
	}

	n, err = s.SyncEntries(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("entries: %w", err))
	} else {
		report.Entries = n
	}

	return report, errors.Join(errs...)
}
