package nightscout

// Profile is a Nightscout profile document. Mills (the settings timestamp in
// epoch milliseconds, as a string) doubles as the idempotency key: a rebuilt
// document with the same Mills as an existing remote document reuses its ID
// so the PUT becomes an update instead of an insert.
type Profile struct {
	ID             string                  `json:"_id,omitempty"`
	DefaultProfile string                  `json:"defaultProfile"`
	StartDate      string                  `json:"startDate"`
	Mills          string                  `json:"mills"`
	Units          string                  `json:"units"`
	Store          map[string]*ProfileInfo `json:"store"`
}

// ProfileInfo holds the per-schedule timed sequences of one named profile.
type ProfileInfo struct {
	Basal      []ScheduleEntry `json:"basal"`
	TargetLow  []ScheduleEntry `json:"target_low"`
	TargetHigh []ScheduleEntry `json:"target_high"`
	CarbRatio  []ScheduleEntry `json:"carbratio"`
	Sens       []ScheduleEntry `json:"sens"`
}

// ScheduleEntry is one timed value in a profile schedule. Value and
// TimeAsSeconds are rendered as plain decimal strings; Nightscout's profile
// editor stores them that way.
type ScheduleEntry struct {
	Time          string `json:"time"`
	Value         string `json:"value"`
	TimeAsSeconds string `json:"timeAsSeconds"`
}

// Treatment is a Nightscout treatment record. Optional numeric fields are
// pointers so that absent and zero are distinguishable on the wire.
type Treatment struct {
	ID        string   `json:"_id,omitempty"`
	EventType string   `json:"eventType,omitempty"`
	CreatedAt string   `json:"created_at"`
	EnteredBy string   `json:"enteredBy,omitempty"`
	Insulin   *float64 `json:"insulin,omitempty"`
	Carbs     *float64 `json:"carbs,omitempty"`
	Duration  *float64 `json:"duration,omitempty"`
	Relative  *float64 `json:"relative,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// Entry is a Nightscout sensor glucose value.
type Entry struct {
	Type       string `json:"type"`
	Sgv        int    `json:"sgv"`
	Date       int64  `json:"date"`
	DateString string `json:"dateString"`
	Device     string `json:"device"`
	Direction  string `json:"direction"`
	Noise      int    `json:"noise"`
}

// Status is the subset of api/v1/status.json the sync pipeline reads.
type Status struct {
	Settings struct {
		Units string `json:"units"`
	} `json:"settings"`
}
