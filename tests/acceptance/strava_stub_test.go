package acceptance

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/talaria-app/talaria/internal/strava"
)

const (
	stubAthleteID    = int64(4242)
	stubInitialCode  = "good-code"
	stubAccessToken  = "stub-access-token-1"
	stubRefreshToken = "stub-refresh-token-1"
)

// stravaStub is an in-process stand-in for the remote Strava API. It serves
// the OAuth token endpoint and the activity list endpoint, tracks the
// current token pair, and rotates it on every refresh so single-use refresh
// semantics can be exercised.
type stravaStub struct {
	server *httptest.Server

	mu           sync.Mutex
	activities   []strava.Activity
	accessToken  string
	refreshToken string
	generation   int
	refreshes    int
	listCalls    int
}

func newStravaStub() *stravaStub {
	stub := &stravaStub{}
	stub.resetLocked()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", stub.handleToken)
	mux.HandleFunc("/athlete/activities", stub.handleListActivities)
	stub.server = httptest.NewServer(mux)

	return stub
}

func (s *stravaStub) URL() string {
	return s.server.URL
}

func (s *stravaStub) Close() {
	s.server.Close()
}

func (s *stravaStub) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *stravaStub) resetLocked() {
	s.activities = nil
	s.accessToken = stubAccessToken
	s.refreshToken = stubRefreshToken
	s.generation = 1
	s.refreshes = 0
	s.listCalls = 0
}

// AddActivity registers a summary activity the list endpoint will serve.
func (s *stravaStub) AddActivity(a strava.Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, a)
}

// ExpireAccessToken invalidates the current access token without touching
// the refresh token, forcing the next list call to come back 401.
func (s *stravaStub) ExpireAccessToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
}

func (s *stravaStub) Refreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

func (s *stravaStub) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.PostForm.Get("grant_type") {
	case "authorization_code":
		if r.PostForm.Get("code") != stubInitialCode {
			writeStubError(w, http.StatusUnauthorized, "invalid code")
			return
		}
		writeStubJSON(w, s.tokenResponseLocked(true))

	case "refresh_token":
		if r.PostForm.Get("refresh_token") != s.refreshToken {
			writeStubError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		s.generation++
		s.refreshes++
		s.accessToken = fmt.Sprintf("stub-access-token-%d", s.generation)
		s.refreshToken = fmt.Sprintf("stub-refresh-token-%d", s.generation)
		writeStubJSON(w, s.tokenResponseLocked(false))

	default:
		writeStubError(w, http.StatusBadRequest, "unsupported grant type")
	}
}

func (s *stravaStub) tokenResponseLocked(withAthlete bool) strava.TokenResponse {
	resp := strava.TokenResponse{
		AccessToken:  s.accessToken,
		RefreshToken: s.refreshToken,
		ExpiresAt:    time.Now().Add(6 * time.Hour).Unix(),
	}
	if withAthlete {
		resp.Athlete = &strava.AthleteDetail{
			ID:            stubAthleteID,
			Username:      "trailrunner",
			Firstname:     "Taylor",
			Lastname:      "Reed",
			ProfileMedium: "https://example.com/avatar.jpg",
		}
	}
	return resp
}

func (s *stravaStub) handleListActivities(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listCalls++

	if r.Header.Get("Authorization") != "Bearer "+s.accessToken {
		writeStubError(w, http.StatusUnauthorized, "invalid access token")
		return
	}

	after, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = 30
	}

	var matched []strava.Activity
	for _, a := range s.activities {
		started, err := time.Parse(time.RFC3339, a.StartDate)
		if err != nil {
			continue
		}
		if started.Unix() > after {
			matched = append(matched, a)
		}
	}

	start := (page - 1) * perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}

	writeStubJSON(w, matched[start:end])
}

func writeStubJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func writeStubError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// stubActivity builds a plausible run summary for the list endpoint.
func stubActivity(stravaID int64, name string, startDate time.Time) strava.Activity {
	avgSpeed := 3.33
	avgHR := 150.0
	local := startDate.Add(2 * time.Hour)

	return strava.Activity{
		ID:               stravaID,
		Name:             name,
		Type:             "Run",
		SportType:        "Run",
		Distance:         5000,
		MovingTime:       1500,
		ElapsedTime:      1560,
		StartDate:        startDate.UTC().Format(time.RFC3339),
		StartDateLocal:   local.UTC().Format(time.RFC3339),
		Timezone:         "(GMT+02:00) Europe/Berlin",
		AverageSpeed:     &avgSpeed,
		AverageHeartrate: &avgHR,
		Map:              &strava.ActivityMap{SummaryPolyline: "_p~iF~ps|U_ulLnnqC_mqNvxq`@"},
	}
}
