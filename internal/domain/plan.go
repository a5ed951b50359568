package domain

import "encoding/json"

// StrategySmooth is currently the only transition strategy.
const StrategySmooth = "smooth"

// Window is a region of a track, in seconds.
type Window struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// TransitionPlan is the proposed crossfade between two tracks.
type TransitionPlan struct {
	TempoRatio float64 `json:"tempoRatio"`
	From       Window  `json:"from"`
	To         Window  `json:"to"`
	Strategy   string  `json:"strategy"`
}

// PlanRequest is the body of a plan-transition call.
type PlanRequest struct {
	From TrackAnalysis `json:"from"`
	To   TrackAnalysis `json:"to"`
}

// DecodePlanRequest decodes a plan request, substituting default analyses for
// anything that is missing. It never fails.
func DecodePlanRequest(data []byte) PlanRequest {
	req := PlanRequest{
		From: DefaultTrackAnalysis(),
		To:   DefaultTrackAnalysis(),
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return PlanRequest{
			From: DefaultTrackAnalysis(),
			To:   DefaultTrackAnalysis(),
		}
	}
	return req
}
