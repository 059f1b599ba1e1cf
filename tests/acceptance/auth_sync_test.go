package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/talaria-app/talaria/internal/dto"
)

func (s *Suite) exchangeCode(code string) (*http.Response, error) {
	body, _ := json.Marshal(dto.TokenExchangeRequest{Code: code})
	return http.Post(
		s.BaseURL+"/api/v1/auth/strava/callback",
		"application/json",
		bytes.NewBuffer(body),
	)
}

// login runs the OAuth callback with the stub's accepted code and returns
// the minted session.
func (s *Suite) login() dto.SessionResponse {
	resp, err := s.exchangeCode(stubInitialCode)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode, "Code exchange should succeed")

	var session dto.SessionResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&session))
	return session
}

func (s *Suite) doAuth(method, path, token string, body []byte) *http.Response {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, s.BaseURL+path, bytes.NewBuffer(body))
	} else {
		req, err = http.NewRequest(method, s.BaseURL+path, nil)
	}
	s.Require().NoError(err)

	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) syncActivities(session dto.SessionResponse) dto.SyncResponse {
	resp := s.doAuth(http.MethodPost,
		fmt.Sprintf("/api/v1/activities/sync/%d", session.Athlete.ID),
		session.AccessToken, nil)
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode, "Sync should succeed")

	var syncResp dto.SyncResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&syncResp))
	return syncResp
}

func (s *Suite) TestAuthorizeURL() {
	resp, err := http.Get(s.BaseURL + "/api/v1/auth/strava/url")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var payload map[string]string
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&payload))
	s.Contains(payload["authorize_url"], s.Strava.URL())
	s.Contains(payload["authorize_url"], "client_id=12345")
	s.Contains(payload["authorize_url"], "activity%3Aread_all")
}

func (s *Suite) TestCallback_CreatesSessionAndAthlete() {
	session := s.login()

	s.NotEmpty(session.AccessToken)
	s.Equal("Bearer", session.TokenType)
	s.NotZero(session.ExpiresIn)
	s.Equal(stubAthleteID, session.Athlete.StravaID)
	s.NotZero(session.Athlete.ID)
	s.Require().NotNil(session.Athlete.Username)
	s.Equal("trailrunner", *session.Athlete.Username)
}

func (s *Suite) TestCallback_RepeatLoginKeepsOneAthlete() {
	first := s.login()
	second := s.login()

	s.Equal(first.Athlete.ID, second.Athlete.ID)

	var count int
	err := s.Postgres.DB.QueryRow("SELECT COUNT(*) FROM athletes").Scan(&count)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *Suite) TestCallback_RejectedCode() {
	resp, err := s.exchangeCode("expired-code")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	var errResp dto.ErrorResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&errResp))
	s.Equal("Unauthorized", errResp.Error)
}

func (s *Suite) TestCallback_EmptyCode() {
	resp, err := s.exchangeCode("")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestGetMe() {
	session := s.login()

	resp := s.doAuth(http.MethodGet, "/api/v1/auth/me", session.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var athlete dto.AthleteResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&athlete))
	s.Equal(session.Athlete.ID, athlete.ID)
	s.Equal(stubAthleteID, athlete.StravaID)
}

func (s *Suite) TestGetMe_MissingToken() {
	resp, err := http.Get(s.BaseURL + "/api/v1/auth/me")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestSync_CreatesActivities() {
	now := time.Now()
	s.Strava.AddActivity(stubActivity(9001, "Morning Run", now.Add(-48*time.Hour)))
	s.Strava.AddActivity(stubActivity(9002, "Evening Run", now.Add(-24*time.Hour)))

	session := s.login()
	syncResp := s.syncActivities(session)

	s.True(syncResp.Success)
	s.Equal(2, syncResp.ActivitiesSynced)
	s.Equal(0, syncResp.ActivitiesUpdated)
	s.Equal(2, syncResp.Total)
	s.NotNil(syncResp.LastSync)
}

func (s *Suite) TestSync_SecondRunIsIncremental() {
	now := time.Now()
	s.Strava.AddActivity(stubActivity(9001, "Morning Run", now.Add(-48*time.Hour)))

	session := s.login()
	first := s.syncActivities(session)
	s.Equal(1, first.ActivitiesSynced)

	s.Strava.AddActivity(stubActivity(9002, "Evening Run", now.Add(-time.Hour)))

	second := s.syncActivities(session)
	s.Equal(1, second.ActivitiesSynced)
	s.Equal(1, second.Total, "Batch total covers only this run")
}

func (s *Suite) TestSync_RecoversFromExpiredAccessToken() {
	now := time.Now()
	s.Strava.AddActivity(stubActivity(9001, "Morning Run", now.Add(-48*time.Hour)))

	session := s.login()
	s.Strava.ExpireAccessToken()

	syncResp := s.syncActivities(session)

	s.True(syncResp.Success)
	s.Equal(1, syncResp.ActivitiesSynced)
	s.Equal(1, s.Strava.Refreshes(), "Expected exactly one token refresh")
}

func (s *Suite) TestSync_OtherAthleteForbidden() {
	session := s.login()

	resp := s.doAuth(http.MethodPost,
		fmt.Sprintf("/api/v1/activities/sync/%d", session.Athlete.ID+1),
		session.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *Suite) TestActivities_ListAndDetail() {
	now := time.Now()
	s.Strava.AddActivity(stubActivity(9001, "Morning Run", now.Add(-48*time.Hour)))
	s.Strava.AddActivity(stubActivity(9002, "Evening Run", now.Add(-24*time.Hour)))

	session := s.login()
	s.syncActivities(session)

	listResp := s.doAuth(http.MethodGet,
		fmt.Sprintf("/api/v1/activities/%d?sort_by=start_date&order=desc", session.Athlete.ID),
		session.AccessToken, nil)
	defer listResp.Body.Close()

	s.Require().Equal(http.StatusOK, listResp.StatusCode)

	var list dto.ActivityListResponse
	s.Require().NoError(json.NewDecoder(listResp.Body).Decode(&list))
	s.Equal(2, list.Total)
	s.Require().Len(list.Activities, 2)
	s.Equal("Evening Run", list.Activities[0].Name)
	s.False(list.HasMore)

	detailResp := s.doAuth(http.MethodGet,
		fmt.Sprintf("/api/v1/activities/%d/%d", session.Athlete.ID, list.Activities[0].ID),
		session.AccessToken, nil)
	defer detailResp.Body.Close()

	s.Require().Equal(http.StatusOK, detailResp.StatusCode)

	var detail dto.ActivityDetailResponse
	s.Require().NoError(json.NewDecoder(detailResp.Body).Decode(&detail))
	s.Equal(int64(9002), detail.StravaID)
	s.Len(detail.Splits, 5)
	s.NotEmpty(detail.Route)
	s.Require().NotNil(detail.PaceString)
	s.Equal("5:00", *detail.PaceString)
	s.Require().NotNil(detail.HRZone)
	s.Equal(3, *detail.HRZone)
}

func (s *Suite) TestActivities_DetailNotFound() {
	session := s.login()

	resp := s.doAuth(http.MethodGet,
		fmt.Sprintf("/api/v1/activities/%d/999999", session.Athlete.ID),
		session.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestActivities_Calendar() {
	start := time.Date(2026, 8, 19, 6, 0, 0, 0, time.UTC)
	s.Strava.AddActivity(stubActivity(9001, "Midweek Run", start))

	session := s.login()
	s.syncActivities(session)

	resp := s.doAuth(http.MethodGet,
		fmt.Sprintf("/api/v1/activities/%d/calendar?from=2026-08-17&to=2026-08-23", session.Athlete.ID),
		session.AccessToken, nil)
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var calendar dto.CalendarResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&calendar))
	s.Require().Len(calendar.Weeks, 1)
	s.Require().Len(calendar.Weeks[0].Days, 7)

	var populated int
	for _, day := range calendar.Weeks[0].Days {
		populated += len(day.Activities)
	}
	s.Equal(1, populated)
}
