package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MissingURLMessage is reported when a mix request lacks a source URL.
const MissingURLMessage = "Missing from.url or to.url"

// SourceSpec describes which part of a remote audio file to use.
type SourceSpec struct {
	URL         string   `json:"url"`
	StartSec    float64  `json:"startSec,omitempty"`
	DurationSec *float64 `json:"durationSec,omitempty"`
}

// HasDuration reports whether the source should be truncated.
func (s SourceSpec) HasDuration() bool {
	return s.DurationSec != nil && *s.DurationSec > 0
}

// MixRequest asks for an offline crossfade between two sources.
type MixRequest struct {
	From         SourceSpec `json:"from"`
	To           SourceSpec `json:"to"`
	CrossfadeSec *float64   `json:"crossfadeSec,omitempty"`
}

// Validate checks that both source URLs are present.
func (r MixRequest) Validate() error {
	if strings.TrimSpace(r.From.URL) == "" || strings.TrimSpace(r.To.URL) == "" {
		return &ValidationError{Message: MissingURLMessage}
	}
	return nil
}

// Crossfade returns the requested crossfade length, or def when none was given.
func (r MixRequest) Crossfade(def float64) float64 {
	if r.CrossfadeSec == nil {
		return def
	}
	return *r.CrossfadeSec
}

// UnmarshalJSON accepts numbers or numeric strings for the offsets.
func (s *SourceSpec) UnmarshalJSON(data []byte) error {
	var aux struct {
		URL         string          `json:"url"`
		StartSec    json.RawMessage `json:"startSec"`
		DurationSec json.RawMessage `json:"durationSec"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*s = SourceSpec{URL: aux.URL}
	start, err := parseSeconds("startSec", aux.StartSec)
	if err != nil {
		return err
	}
	if start != nil {
		s.StartSec = *start
	}
	s.DurationSec, err = parseSeconds("durationSec", aux.DurationSec)
	return err
}

// UnmarshalJSON accepts a number or numeric string for crossfadeSec.
func (r *MixRequest) UnmarshalJSON(data []byte) error {
	var aux struct {
		From         SourceSpec      `json:"from"`
		To           SourceSpec      `json:"to"`
		CrossfadeSec json.RawMessage `json:"crossfadeSec"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	crossfade, err := parseSeconds("crossfadeSec", aux.CrossfadeSec)
	if err != nil {
		return err
	}
	*r = MixRequest{From: aux.From, To: aux.To, CrossfadeSec: crossfade}
	return nil
}

// parseSeconds returns nil for an absent or null field and an error for
// anything that is not a finite number.
func parseSeconds(field string, raw json.RawMessage) (*float64, error) {
	if len(raw) == 0 || isNull(raw) {
		return nil, nil
	}
	v, ok := parseNumber(raw)
	if !ok {
		return nil, fmt.Errorf("%s: expected a number, got %s", field, raw)
	}
	return &v, nil
}
