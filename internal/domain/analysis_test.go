package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackAnalysisDecoding(t *testing.T) {
	data := `{"tempo": 128.5, "key": 7, "durationMs": 215000, "sections": [{"start": 0}, {"start": 180.25}], "beats": [{"start": 0.5}]}`

	var analysis TrackAnalysis
	require.NoError(t, json.Unmarshal([]byte(data), &analysis))

	assert.Equal(t, 128.5, analysis.Tempo)
	assert.Equal(t, 7, analysis.Key)
	assert.Equal(t, 215000.0, analysis.DurationMs)
	assert.Equal(t, 215.0, analysis.DurationSec())
	require.Len(t, analysis.Sections, 2)

	last, ok := analysis.LastSectionStart()
	assert.True(t, ok)
	assert.Equal(t, 180.25, last)

	first, ok := analysis.FirstSectionStart()
	assert.True(t, ok)
	assert.Equal(t, 0.0, first)

	assert.JSONEq(t, `[{"start": 0.5}]`, string(analysis.Beats))
}

func TestTrackAnalysisDefaults(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty object", data: `{}`},
		{name: "null", data: `null`},
		{name: "not an object", data: `42`},
		{name: "wrong types", data: `{"tempo": "fast", "key": [1], "durationMs": {}, "sections": "intro"}`},
		{name: "null fields", data: `{"tempo": null, "key": null, "durationMs": null, "sections": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var analysis TrackAnalysis
			require.NoError(t, json.Unmarshal([]byte(tt.data), &analysis))

			assert.Equal(t, DefaultTempo, analysis.Tempo)
			assert.Equal(t, UnknownKey, analysis.Key)
			assert.Equal(t, 0.0, analysis.DurationMs)
			assert.Empty(t, analysis.Sections)

			_, ok := analysis.LastSectionStart()
			assert.False(t, ok)
		})
	}
}

func TestTrackAnalysisNumericStrings(t *testing.T) {
	var analysis TrackAnalysis
	require.NoError(t, json.Unmarshal([]byte(`{"tempo": "124", "key": "5", "duration_ms": "60000"}`), &analysis))

	assert.Equal(t, 124.0, analysis.Tempo)
	assert.Equal(t, 5, analysis.Key)
	assert.Equal(t, 60000.0, analysis.DurationMs)
}

func TestTrackAnalysisNonFiniteStrings(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "NaN tempo", data: `{"tempo": "NaN"}`},
		{name: "infinite tempo", data: `{"tempo": "Infinity"}`},
		{name: "negative infinite tempo", data: `{"tempo": "-Inf"}`},
		{name: "infinite duration", data: `{"durationMs": "Infinity"}`},
		{name: "NaN section start", data: `{"sections": [{"start": "nan"}]}`},
		{name: "out of range number", data: `{"tempo": 1e400}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var analysis TrackAnalysis
			require.NoError(t, json.Unmarshal([]byte(tt.data), &analysis))

			assert.Equal(t, DefaultTempo, analysis.Tempo)
			assert.Equal(t, DefaultDurationMs, analysis.DurationMs)
			_, ok := analysis.FirstSectionStart()
			assert.False(t, ok)
		})
	}
}

func TestMalformedSections(t *testing.T) {
	var analysis TrackAnalysis
	data := `{"sections": [{"start": 10}, "verse", {"confidence": 0.4}]}`
	require.NoError(t, json.Unmarshal([]byte(data), &analysis))

	require.Len(t, analysis.Sections, 3)

	first, ok := analysis.FirstSectionStart()
	assert.True(t, ok)
	assert.Equal(t, 10.0, first)

	_, ok = analysis.LastSectionStart()
	assert.False(t, ok, "last section has no start")
}

func TestDecodePlanRequest(t *testing.T) {
	req := DecodePlanRequest([]byte(`{"from": {"tempo": 100}}`))
	assert.Equal(t, 100.0, req.From.Tempo)
	assert.Equal(t, UnknownKey, req.From.Key)
	assert.Equal(t, DefaultTempo, req.To.Tempo, "missing target uses defaults")
	assert.Equal(t, UnknownKey, req.To.Key)

	garbage := DecodePlanRequest([]byte(`not json`))
	assert.Equal(t, DefaultTrackAnalysis(), garbage.From)
	assert.Equal(t, DefaultTrackAnalysis(), garbage.To)
}

func TestMixRequestValidation(t *testing.T) {
	var req MixRequest
	require.NoError(t, json.Unmarshal([]byte(`{"from": {"url": "https://a.example/a.mp3"}, "to": {"url": " "}}`), &req))

	err := req.Validate()
	require.Error(t, err)

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, MissingURLMessage, err.Error())

	req.To.URL = "https://b.example/b.mp3"
	assert.NoError(t, req.Validate())
}

func TestMixRequestOptionalFields(t *testing.T) {
	var req MixRequest
	data := `{"from": {"url": "a", "startSec": 30, "durationSec": 20}, "to": {"url": "b", "durationSec": 0}, "crossfadeSec": 4}`
	require.NoError(t, json.Unmarshal([]byte(data), &req))

	assert.Equal(t, 30.0, req.From.StartSec)
	assert.True(t, req.From.HasDuration())
	assert.False(t, req.To.HasDuration())
	assert.Equal(t, 4.0, req.Crossfade(12))

	req.CrossfadeSec = nil
	assert.Equal(t, 12.0, req.Crossfade(12))
}

func TestMixRequestNumericStrings(t *testing.T) {
	var req MixRequest
	data := `{"from": {"url": "a", "startSec": "30", "durationSec": " 20.5 "}, "to": {"url": "b", "startSec": null}, "crossfadeSec": "4"}`
	require.NoError(t, json.Unmarshal([]byte(data), &req))

	assert.Equal(t, 30.0, req.From.StartSec)
	require.True(t, req.From.HasDuration())
	assert.Equal(t, 20.5, *req.From.DurationSec)
	assert.Equal(t, 0.0, req.To.StartSec)
	assert.Nil(t, req.To.DurationSec)
	assert.Equal(t, 4.0, req.Crossfade(12))
}

func TestMixRequestRejectsNonNumbers(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "word start", data: `{"from": {"url": "a", "startSec": "soon"}, "to": {"url": "b"}}`},
		{name: "NaN crossfade", data: `{"from": {"url": "a"}, "to": {"url": "b"}, "crossfadeSec": "NaN"}`},
		{name: "infinite duration", data: `{"from": {"url": "a"}, "to": {"url": "b", "durationSec": "Infinity"}}`},
		{name: "object crossfade", data: `{"from": {"url": "a"}, "to": {"url": "b"}, "crossfadeSec": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MixRequest
			assert.Error(t, json.Unmarshal([]byte(tt.data), &req))
		})
	}
}

func TestErrorTypes(t *testing.T) {
	cause := errors.New("connection refused")

	fetchErr := &FetchError{URL: "https://a.example/a.mp3", Err: cause}
	assert.ErrorIs(t, fetchErr, cause)
	assert.Contains(t, fetchErr.Error(), "connection refused")

	statusErr := &FetchError{URL: "https://a.example/a.mp3", StatusCode: 404}
	assert.Contains(t, statusErr.Error(), "404")

	decodeErr := &DecodeError{URL: "https://a.example/a.mp3", Err: cause}
	assert.ErrorIs(t, decodeErr, cause)
	assert.Contains(t, decodeErr.Error(), "decode https://a.example/a.mp3")
}
