package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Defaults substituted for missing or malformed analysis fields.
const (
	DefaultTempo      = 120.0
	UnknownKey        = -1
	DefaultDurationMs = 0.0
)

// Section is a structural segment of a track from prior audio analysis.
// Start is nil when the analysis did not carry a usable start offset.
type Section struct {
	Start *float64 `json:"start,omitempty"`
}

// TrackAnalysis holds the precomputed analysis of a single track.
type TrackAnalysis struct {
	Tempo      float64         `json:"tempo"`
	Key        int             `json:"key"`
	DurationMs float64         `json:"durationMs"`
	Sections   []Section       `json:"sections"`
	Beats      json.RawMessage `json:"beats,omitempty"`
}

// DefaultTrackAnalysis returns the analysis used when nothing is known about a track.
func DefaultTrackAnalysis() TrackAnalysis {
	return TrackAnalysis{
		Tempo:      DefaultTempo,
		Key:        UnknownKey,
		DurationMs: DefaultDurationMs,
		Sections:   []Section{},
	}
}

// UnmarshalJSON decodes an analysis without ever failing. Every field that is
// absent, null or of the wrong type keeps its default.
func (a *TrackAnalysis) UnmarshalJSON(data []byte) error {
	*a = DefaultTrackAnalysis()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}

	if v, ok := parseNumber(fields["tempo"]); ok {
		a.Tempo = v
	}
	if v, ok := parseNumber(fields["key"]); ok {
		a.Key = int(v)
	}

	// duration_ms is the Spotify spelling
	if v, ok := parseNumber(fields["durationMs"]); ok {
		a.DurationMs = v
	} else if v, ok := parseNumber(fields["duration_ms"]); ok {
		a.DurationMs = v
	}

	a.Sections = parseSections(fields["sections"])

	if raw, ok := fields["beats"]; ok && !isNull(raw) {
		a.Beats = raw
	}

	return nil
}

// LastSectionStart returns the start of the final section, if it has one.
func (a TrackAnalysis) LastSectionStart() (float64, bool) {
	if len(a.Sections) == 0 {
		return 0, false
	}
	return a.Sections[len(a.Sections)-1].start()
}

// FirstSectionStart returns the start of the first section, if it has one.
func (a TrackAnalysis) FirstSectionStart() (float64, bool) {
	if len(a.Sections) == 0 {
		return 0, false
	}
	return a.Sections[0].start()
}

// DurationSec is the track duration in seconds.
func (a TrackAnalysis) DurationSec() float64 {
	return a.DurationMs / 1000.0
}

func (s Section) start() (float64, bool) {
	if s.Start == nil {
		return 0, false
	}
	return *s.Start, true
}

func parseSections(raw json.RawMessage) []Section {
	sections := []Section{}
	if len(raw) == 0 || isNull(raw) {
		return sections
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return sections
	}

	for _, item := range items {
		var section Section
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err == nil {
			if v, ok := parseNumber(fields["start"]); ok {
				section.Start = &v
			}
		}
		sections = append(sections, section)
	}
	return sections
}

// parseNumber accepts JSON numbers and numeric strings. NaN and infinities
// are rejected so they never reach a plan.
func parseNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || isNull(raw) {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
