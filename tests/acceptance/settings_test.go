package acceptance

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/talaria-app/talaria/internal/dto"
)

func (s *Suite) getSettings(session dto.SessionResponse) dto.SettingsResponse {
	resp := s.doAuth(http.MethodGet,
		fmt.Sprintf("/api/v1/settings/%d", session.Athlete.ID),
		session.AccessToken, nil)
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var settings dto.SettingsResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&settings))
	return settings
}

func (s *Suite) TestSettings_DefaultsCreatedOnLogin() {
	session := s.login()
	settings := s.getSettings(session)

	s.Equal(session.Athlete.ID, settings.AthleteID)
	s.Equal("5_zone", settings.ZoneModelType)
	s.Equal(190, settings.MaxHeartRate)
	s.Equal(60, settings.RestHeartRate)
	s.Len(settings.HRZones, 5)
	s.Len(settings.PaceZones, 5)
	s.Equal("monday", settings.CalendarStartDay)
	s.Equal("km", settings.DistanceUnit)
	s.Equal("celsius", settings.TemperatureUnit)
}

func (s *Suite) TestSettings_PartialUpdate() {
	session := s.login()

	body, _ := json.Marshal(map[string]any{
		"max_heart_rate": 195,
		"distance_unit":  "miles",
	})
	resp := s.doAuth(http.MethodPatch,
		fmt.Sprintf("/api/v1/settings/%d", session.Athlete.ID),
		session.AccessToken, body)
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode)

	settings := s.getSettings(session)
	s.Equal(195, settings.MaxHeartRate)
	s.Equal("miles", settings.DistanceUnit)
	s.Equal(60, settings.RestHeartRate, "Untouched fields should keep their values")
}

func (s *Suite) TestSettings_RejectsInvalidUpdate() {
	session := s.login()

	body, _ := json.Marshal(map[string]any{"max_heart_rate": 300})
	resp := s.doAuth(http.MethodPatch,
		fmt.Sprintf("/api/v1/settings/%d", session.Athlete.ID),
		session.AccessToken, body)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)

	settings := s.getSettings(session)
	s.Equal(190, settings.MaxHeartRate, "Rejected update should leave stored settings intact")
}

func (s *Suite) TestSettings_ChangeZoneModel() {
	session := s.login()

	body, _ := json.Marshal(dto.ChangeZoneModelRequest{ZoneModelType: "3_zone"})
	resp := s.doAuth(http.MethodPost,
		fmt.Sprintf("/api/v1/settings/%d/zone-model", session.Athlete.ID),
		session.AccessToken, body)
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode)

	settings := s.getSettings(session)
	s.Equal("3_zone", settings.ZoneModelType)
	s.Len(settings.HRZones, 3)
	s.Len(settings.PaceZones, 3)
}

func (s *Suite) TestSettings_Zones() {
	session := s.login()

	resp := s.doAuth(http.MethodGet,
		fmt.Sprintf("/api/v1/settings/%d/zones", session.Athlete.ID),
		session.AccessToken, nil)
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var zones dto.ZonesResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&zones))
	s.Equal("5_zone", zones.ZoneModelType)
	s.Require().Len(zones.HRZones, 5)
	s.Require().Len(zones.PaceZones, 5)
	s.Equal(1, zones.HRZones[0].Zone)
	s.Equal(60, zones.HRZones[0].MinBPM)
	s.Equal(190, zones.HRZones[4].MaxBPM)
	s.Empty(zones.PaceZones[0].Slower)
	s.NotEmpty(zones.PaceZones[0].Faster)
}

func (s *Suite) TestSettings_Reset() {
	session := s.login()

	body, _ := json.Marshal(map[string]any{"max_heart_rate": 200})
	resp := s.doAuth(http.MethodPatch,
		fmt.Sprintf("/api/v1/settings/%d", session.Athlete.ID),
		session.AccessToken, body)
	resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resetResp := s.doAuth(http.MethodPost,
		fmt.Sprintf("/api/v1/settings/%d/reset", session.Athlete.ID),
		session.AccessToken, nil)
	defer resetResp.Body.Close()

	s.Require().Equal(http.StatusOK, resetResp.StatusCode)

	settings := s.getSettings(session)
	s.Equal(190, settings.MaxHeartRate)
	s.Equal("5_zone", settings.ZoneModelType)
}

func (s *Suite) TestSettings_OtherAthleteForbidden() {
	session := s.login()

	resp := s.doAuth(http.MethodGet,
		fmt.Sprintf("/api/v1/settings/%d", session.Athlete.ID+1),
		session.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusForbidden, resp.StatusCode)
}
