package syncer

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Marqogram/TidepoolToNightScoutSync/internal/nightscout"
	"github.com/Marqogram/TidepoolToNightScoutSync/internal/tidepool"
)

// BuildProfile turns a pump settings history into a Nightscout profile
// document. The snapshot with the latest device timestamp is used; ties go to
// the later record in the slice. Returns nil when the history is empty, which
// callers must treat as "skip the upsert", not as an error.
//
// The destination schema has no single target field, so each source BG target
// becomes a band: low = targetLow (operator-configured), high = targetLow +
// the source target value.
func BuildProfile(history []tidepool.PumpSettings, targetLow float64) *nightscout.Profile {
	latest := latestSettings(history)
	if latest == nil {
		return nil
	}

	// Fallback only: a snapshot without a device timestamp yields a moving
	// key, which breaks idempotent re-runs for that snapshot.
	ts := time.Now()
	if latest.Time != nil {
		ts = *latest.Time
	}

	profile := &nightscout.Profile{
		DefaultProfile: latest.ActiveSchedule,
		StartDate:      ts.UTC().Format(time.RFC3339),
		Mills:          strconv.FormatInt(ts.UnixMilli(), 10),
		Units:          latest.Units.BG,
		Store:          make(map[string]*nightscout.ProfileInfo),
	}

	info := func(name string) *nightscout.ProfileInfo {
		p, ok := profile.Store[name]
		if !ok {
			p = &nightscout.ProfileInfo{}
			profile.Store[name] = p
		}
		return p
	}

	for name, rates := range latest.BasalSchedules {
		p := info(name)
		for _, r := range rates {
			p.Basal = append(p.Basal, scheduleEntry(r.Start, r.Rate))
		}
	}
	for name, targets := range latest.BGTargets {
		p := info(name)
		for _, t := range targets {
			p.TargetLow = append(p.TargetLow, scheduleEntry(t.Start, targetLow))
			p.TargetHigh = append(p.TargetHigh, scheduleEntry(t.Start, targetLow+t.Target))
		}
	}
	for name, ratios := range latest.CarbRatios {
		p := info(name)
		for _, r := range ratios {
			p.CarbRatio = append(p.CarbRatio, scheduleEntry(r.Start, r.Amount))
		}
	}
	for name, sens := range latest.InsulinSensitivities {
		p := info(name)
		for _, s := range sens {
			p.Sens = append(p.Sens, scheduleEntry(s.Start, s.Amount))
		}
	}

	return profile
}

// MatchExisting copies the identifier of the remote profile whose Mills
// matches, so the destination treats the write as an update. No match leaves
// the ID unset and the write becomes an insert.
func MatchExisting(profile *nightscout.Profile, existing []nightscout.Profile) {
	for _, e := range existing {
		if e.Mills == profile.Mills {
			profile.ID = e.ID
			return
		}
	}
}

// latestSettings picks the snapshot with the maximum device timestamp.
// Snapshots without a timestamp only win when no timestamped snapshot exists.
func latestSettings(history []tidepool.PumpSettings) *tidepool.PumpSettings {
	var best *tidepool.PumpSettings
	for i := range history {
		s := &history[i]
		switch {
		case best == nil:
			best = s
		case s.Time == nil:
			if best.Time == nil {
				best = s
			}
		case best.Time == nil || !s.Time.Before(*best.Time):
			best = s
		}
	}
	return best
}

// scheduleEntry renders one timed schedule value. The start offset is
// wall-clock milliseconds into the day; seconds truncate rather than round.
// strconv always formats with a plain decimal point, so the output is
// locale-invariant.
func scheduleEntry(startMillis int64, value float64) nightscout.ScheduleEntry {
	return nightscout.ScheduleEntry{
		Time:          fmt.Sprintf("%02d:%02d", startMillis/3600000, startMillis%3600000/60000),
		Value:         strconv.FormatFloat(value, 'f', -1, 64),
		TimeAsSeconds: strconv.FormatInt(startMillis/1000, 10),
	}
}
