package syncer

import (
	"math"
	"time"

	"github.com/Marqogram/TidepoolToNightScoutSync/internal/nightscout"
	"github.com/Marqogram/TidepoolToNightScoutSync/internal/tidepool"
	"github.com/Marqogram/TidepoolToNightScoutSync/internal/units"
)

// MapEntries converts CGM readings to Nightscout entries in the destination
// unit. Readings without a timestamp are dropped. A reading in an unsupported
// unit aborts the whole batch with units.UnsupportedConversionError.
func MapEntries(readings []tidepool.CBG, unit, device string) ([]nightscout.Entry, error) {
	var out []nightscout.Entry
	for _, r := range readings {
		if r.Time == nil {
			continue
		}
		value, err := units.Convert(r.Units, unit, r.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, nightscout.Entry{
			Type:       "sgv",
			Sgv:        int(math.Round(value)),
			Date:       r.Time.UnixMilli(),
			DateString: r.Time.UTC().Format(time.RFC3339),
			Device:     device,
			Direction:  "Flat",
			Noise:      1,
		})
	}
	return out, nil
}
