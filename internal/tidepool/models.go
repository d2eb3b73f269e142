package tidepool

import "time"

// PumpSettings is one historical pump configuration record from the Tidepool
// data API. Each of the four schedule maps keys a schedule name to an ordered
// sequence of time-of-day entries whose Start is a millisecond offset into
// the day.
type PumpSettings struct {
	ActiveSchedule string     `json:"activeSchedule"`
	Time           *time.Time `json:"time"`
	Units          struct {
		BG string `json:"bg"`
	} `json:"units"`
	BasalSchedules       map[string][]BasalRate   `json:"basalSchedules"`
	BGTargets            map[string][]BGTarget    `json:"bgTargets"`
	CarbRatios           map[string][]CarbRatio   `json:"carbRatios"`
	InsulinSensitivities map[string][]Sensitivity `json:"insulinSensitivities"`
}

// BasalRate is a basal schedule entry: units of insulin per hour starting at
// a millisecond offset into the day.
type BasalRate struct {
	Start int64   `json:"start"`
	Rate  float64 `json:"rate"`
}

// BGTarget is a blood glucose target schedule entry.
type BGTarget struct {
	Start  int64   `json:"start"`
	Target float64 `json:"target"`
}

// CarbRatio is a carbohydrate-to-insulin ratio schedule entry.
type CarbRatio struct {
	Start  int64   `json:"start"`
	Amount float64 `json:"amount"`
}

// Sensitivity is an insulin sensitivity factor schedule entry.
type Sensitivity struct {
	Start  int64   `json:"start"`
	Amount float64 `json:"amount"`
}

// Bolus is an insulin bolus event. Normal is the immediate portion, Extended
// the square-wave portion delivered over Duration milliseconds.
type Bolus struct {
	Time     *time.Time `json:"time"`
	Normal   *float64   `json:"normal"`
	Extended *float64   `json:"extended"`
	Duration *float64   `json:"duration"`
}

// Food is a carbohydrate intake event.
type Food struct {
	Time      *time.Time `json:"time"`
	Nutrition struct {
		Carbohydrate struct {
			Net float64 `json:"net"`
		} `json:"carbohydrate"`
	} `json:"nutrition"`
}

// PhysicalActivity is an exercise event. Duration.Value is in seconds.
type PhysicalActivity struct {
	Time     *time.Time `json:"time"`
	Name     string     `json:"name"`
	Duration struct {
		Value float64 `json:"value"`
		Units string  `json:"units"`
	} `json:"duration"`
}

// CBG is a continuous glucose monitor reading in the units the sensor
// reported.
type CBG struct {
	Time  *time.Time `json:"time"`
	Value float64    `json:"value"`
	Units string     `json:"units"`
}
