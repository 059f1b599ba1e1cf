package strava

// TokenResponse is the OAuth token endpoint payload for both the
// authorization-code exchange and the refresh grant. ExpiresAt is the
// remote-reported absolute expiry in unix seconds.
type TokenResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresAt    int64          `json:"expires_at"`
	Athlete      *AthleteDetail `json:"athlete,omitempty"`
}

// AthleteDetail is the athlete profile embedded in the code-exchange
// response.
type AthleteDetail struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	Firstname     string `json:"firstname"`
	Lastname      string `json:"lastname"`
	ProfileMedium string `json:"profile_medium"`
}

// ActivityMap is the nested map object on activity payloads carrying the
// encoded route geometry.
type ActivityMap struct {
	ID              string `json:"id"`
	SummaryPolyline string `json:"summary_polyline"`
	Polyline        string `json:"polyline"`
}

// Activity is a summary or detailed activity payload. Timestamps stay as
// the raw strings Strava sends; the transformer parses them (the local
// variant is naive despite its Z suffix). Optional numerics are pointers so
// absence is distinguishable from zero.
type Activity struct {
	ID                 int64        `json:"id"`
	Name               string       `json:"name"`
	Type               string       `json:"type"`
	SportType          string       `json:"sport_type"`
	Distance           float64      `json:"distance"`
	MovingTime         int          `json:"moving_time"`
	ElapsedTime        int          `json:"elapsed_time"`
	TotalElevationGain float64      `json:"total_elevation_gain"`
	StartDate          string       `json:"start_date"`
	StartDateLocal     string       `json:"start_date_local"`
	Timezone           string       `json:"timezone"`
	AverageSpeed       *float64     `json:"average_speed"`
	MaxSpeed           *float64     `json:"max_speed"`
	AverageHeartrate   *float64     `json:"average_heartrate"`
	MaxHeartrate       *float64     `json:"max_heartrate"`
	AverageCadence     *float64     `json:"average_cadence"`
	Calories           *float64     `json:"calories"`
	KudosCount         *int         `json:"kudos_count"`
	Map                *ActivityMap `json:"map"`
}

// Stream is one time-series channel of an activity.
type Stream struct {
	Data         []float64 `json:"data"`
	SeriesType   string    `json:"series_type"`
	OriginalSize int       `json:"original_size"`
	Resolution   string    `json:"resolution"`
}

// StreamSet is the key_by_type=true streams response, keyed by stream name
// (time, distance, heartrate, ...). The latlng stream is omitted here; route
// geometry comes from the summary polyline instead.
type StreamSet map[string]Stream

// ListOptions are the query parameters of the activity list endpoint.
// After/Before are unix seconds; zero means unset. PerPage is clamped to
// MaxPerPage before the request.
type ListOptions struct {
	After   int64
	Before  int64
	Page    int
	PerPage int
}
