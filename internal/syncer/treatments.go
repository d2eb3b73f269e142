package syncer

import (
	"time"

	"github.com/Marqogram/TidepoolToNightScoutSync/internal/nightscout"
	"github.com/Marqogram/TidepoolToNightScoutSync/internal/tidepool"
)

// MergeTreatments merges the bolus, food and activity streams into one
// treatment per timestamp. Records without a timestamp are dropped, and
// within each stream only the first record at a given timestamp counts.
//
// Precedence on timestamp collision across streams: a bolus seeds the record
// (picking up same-timestamp carbs from the food stream), a food record only
// fills timestamps no bolus occupied, and an exercise record replaces the
// record outright — including any insulin or carb fields a bolus put there.
// The result is unordered.
func MergeTreatments(boluses []tidepool.Bolus, foods []tidepool.Food, activities []tidepool.PhysicalActivity, enteredBy string) []nightscout.Treatment {
	carbsAt := make(map[int64]float64)
	for _, f := range foods {
		if f.Time == nil {
			continue
		}
		ms := f.Time.UnixMilli()
		if _, ok := carbsAt[ms]; ok {
			continue
		}
		carbsAt[ms] = f.Nutrition.Carbohydrate.Net
	}

	merged := make(map[int64]nightscout.Treatment)
	foodHandled := make(map[int64]bool)

	for _, b := range boluses {
		if b.Time == nil {
			continue
		}
		ms := b.Time.UnixMilli()
		if _, ok := merged[ms]; ok {
			continue
		}
		t := nightscout.Treatment{
			CreatedAt: b.Time.UTC().Format(time.RFC3339),
			EnteredBy: enteredBy,
			Insulin:   b.Normal,
			Relative:  b.Extended,
		}
		if b.Duration != nil {
			t.Duration = ptr(*b.Duration / 60000) // milliseconds → minutes
		}
		if carbs, ok := carbsAt[ms]; ok {
			t.Carbs = ptr(carbs)
			foodHandled[ms] = true
		}
		merged[ms] = t
	}

	for _, f := range foods {
		if f.Time == nil {
			continue
		}
		ms := f.Time.UnixMilli()
		if foodHandled[ms] {
			continue
		}
		if _, ok := merged[ms]; ok {
			continue
		}
		foodHandled[ms] = true
		merged[ms] = nightscout.Treatment{
			CreatedAt: f.Time.UTC().Format(time.RFC3339),
			EnteredBy: enteredBy,
			Carbs:     ptr(carbsAt[ms]),
		}
	}

	activitySeen := make(map[int64]bool)
	for _, a := range activities {
		if a.Time == nil {
			continue
		}
		ms := a.Time.UnixMilli()
		if activitySeen[ms] {
			continue
		}
		activitySeen[ms] = true
		merged[ms] = nightscout.Treatment{
			EventType: "Exercise",
			CreatedAt: a.Time.UTC().Format(time.RFC3339),
			EnteredBy: enteredBy,
			Notes:     a.Name,
			Duration:  ptr(a.Duration.Value / 60), // seconds → minutes
		}
	}

	out := make([]nightscout.Treatment, 0, len(merged))
	for _, t := range merged {
		out = append(out, t)
	}
	return out
}

func ptr(v float64) *float64 { return &v }
