package analytics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/talaria-app/talaria/internal/domain"
)

// Plausible running pace bounds in min/km for threshold validation.
const (
	minPaceThreshold = 2.5
	maxPaceThreshold = 10.0
)

// HRZone is an absolute heart-rate zone in BPM, inclusive on both ends.
type HRZone struct {
	MinBPM int `json:"min_bpm"`
	MaxBPM int `json:"max_bpm"`
}

// PaceZone is a pace zone in min/km. Slower is the higher value; zone 1 has
// an unbounded slower end (math.Inf).
type PaceZone struct {
	Slower float64 `json:"slower"`
	Faster float64 `json:"faster"`
}

// CalculateHRZones converts the configured percentage thresholds into
// absolute BPM zones. Each zone's lower bound chains to the previous zone's
// upper bound; the first lower bound is the rest heart rate.
func CalculateHRZones(settings *domain.UserSettings) []HRZone {
	if len(settings.HRZones) == 0 {
		return nil
	}

	zones := make([]HRZone, 0, len(settings.HRZones))
	previousMax := settings.RestHeartRate
	for _, pct := range settings.HRZones {
		zoneMax := int(math.Round(float64(settings.MaxHeartRate) * pct / 100.0))
		zones = append(zones, HRZone{MinBPM: previousMax, MaxBPM: zoneMax})
		previousMax = zoneMax
	}
	return zones
}

// HRZoneFor classifies a heart rate into a 1-based zone index. Readings
// below the rest heart rate map to 0; readings above every zone map to the
// top zone.
func HRZoneFor(heartRate int, settings *domain.UserSettings) int {
	if heartRate < settings.RestHeartRate {
		return 0
	}

	zones := CalculateHRZones(settings)
	for i, z := range zones {
		if heartRate >= z.MinBPM && heartRate <= z.MaxBPM {
			return i + 1
		}
	}
	return len(zones)
}

// CalculatePaceZones expands the descending pace thresholds into chained
// zones. Zone 1 has no slower bound.
func CalculatePaceZones(settings *domain.UserSettings) []PaceZone {
	if len(settings.PaceZones) == 0 {
		return nil
	}

	zones := make([]PaceZone, 0, len(settings.PaceZones))
	previousSlower := math.Inf(1)
	for _, threshold := range settings.PaceZones {
		zones = append(zones, PaceZone{Slower: previousSlower, Faster: threshold})
		previousSlower = threshold
	}
	return zones
}

// PaceZoneFor classifies a pace (min/km, higher = slower) into a 1-based
// zone index. Paces faster than the fastest threshold map to the top zone;
// 0 is returned only when no zones are configured or the pace is
// non-positive.
func PaceZoneFor(pace float64, settings *domain.UserSettings) int {
	if len(settings.PaceZones) == 0 {
		return 0
	}

	zones := CalculatePaceZones(settings)
	for i, z := range zones {
		if pace >= z.Faster && pace <= z.Slower {
			return i + 1
		}
	}
	if pace < settings.PaceZones[len(settings.PaceZones)-1] && pace > 0 {
		return len(zones)
	}
	return 0
}

// ValidateZoneArray checks a zone threshold array against the constraints of
// its zone model. zoneType is "hr" or "pace". A nil return means the array
// is valid; otherwise the error names the broken rule.
func ValidateZoneArray(zones []float64, zoneType, zoneModel string) error {
	expected, ok := domain.ZoneModelCounts[zoneModel]
	if !ok {
		return fmt.Errorf("invalid zone model: %s", zoneModel)
	}

	if len(zones) != expected {
		return fmt.Errorf("expected %d zones for %s, got %d", expected, zoneModel, len(zones))
	}

	for _, z := range zones {
		if z <= 0 {
			return fmt.Errorf("all zone values must be positive")
		}
	}

	switch zoneType {
	case "hr":
		for i := 0; i < len(zones)-1; i++ {
			if zones[i] >= zones[i+1] {
				return fmt.Errorf("HR zones must be in strictly ascending order")
			}
		}
		for _, z := range zones {
			if z > 100 {
				return fmt.Errorf("HR zone percentages must be between 0 and 100")
			}
		}
		if zones[len(zones)-1] != 100 {
			return fmt.Errorf("last HR zone must be 100%% (maximum effort)")
		}
	case "pace":
		for i := 0; i < len(zones)-1; i++ {
			if zones[i] <= zones[i+1] {
				return fmt.Errorf("pace zones must be in descending order (slower to faster)")
			}
		}
		for _, z := range zones {
			if z < minPaceThreshold || z > maxPaceThreshold {
				return fmt.Errorf("pace zones should be between %.1f and %.1f min/km", minPaceThreshold, maxPaceThreshold)
			}
		}
	default:
		return fmt.Errorf("invalid zone type: %s", zoneType)
	}

	return nil
}

// ZoneNames returns display names for each zone of a model. Unknown models
// get the 5-zone names.
func ZoneNames(zoneModelType string) []string {
	switch zoneModelType {
	case domain.ZoneModel3:
		return []string{"Easy", "Moderate", "Hard"}
	case domain.ZoneModel7:
		return []string{"Recovery", "Easy", "Aerobic", "Tempo", "Threshold", "VO2 Max", "Sprint"}
	default:
		return []string{"Recovery", "Aerobic", "Tempo", "Threshold", "Max"}
	}
}

// ZoneColors returns the standard zone color palette, ordered zone 1 up, for
// up to 7 zones.
func ZoneColors() []string {
	return []string{
		"#9CA3AF",
		"#60A5FA",
		"#34D399",
		"#FBBF24",
		"#FB923C",
		"#F87171",
		"#DC2626",
	}
}

// FormatPace renders a pace in min/km as "M:SS", rounded to the nearest
// whole second so a parsed pace formats back to the same string.
// Non-positive paces render as "0:00".
func FormatPace(minPerKm float64) string {
	if minPerKm <= 0 {
		return "0:00"
	}
	totalSeconds := int(math.Round(minPerKm * 60))
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}

// ParsePace parses an "M:SS" pace string into min/km. Malformed input
// parses to 0.
func ParsePace(pace string) float64 {
	parts := strings.Split(strings.TrimSpace(pace), ":")
	if len(parts) != 2 {
		return 0
	}

	minutes, err := strconv.Atoi(parts[0])
	if err != nil || minutes < 0 {
		return 0
	}
	seconds, err := strconv.Atoi(parts[1])
	if err != nil || seconds < 0 || seconds > 59 {
		return 0
	}

	return float64(minutes) + float64(seconds)/60.0
}
