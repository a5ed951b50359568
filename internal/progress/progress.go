package progress

import (
	"encoding/json"
	"sync"
	"time"
)

// Stage represents the current stage of rendering a mix
type Stage string

const (
	StageInitializing Stage = "initializing"
	StageFetching     Stage = "fetching"
	StageMixing       Stage = "mixing"
	StageEncoding     Stage = "encoding"
	StageComplete     Stage = "complete"
	StageError        Stage = "error"
)

// Event represents a progress event
type Event struct {
	Stage         Stage          `json:"stage"`
	Progress      float64        `json:"progress"`
	Message       string         `json:"message"`
	Timestamp     time.Time      `json:"timestamp"`
	SourceDetails *SourceDetails `json:"sourceDetails,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// SourceDetails describes a source that finished loading
type SourceDetails struct {
	Role     string  `json:"role"` // "from" or "to"
	URL      string  `json:"url"`
	Samples  int     `json:"samples"`
	Duration float64 `json:"duration"`
}

// Tracker manages progress tracking for one render. All methods are safe
// on a nil *Tracker, which discards updates.
type Tracker struct {
	mu            sync.RWMutex
	stage         Stage
	progress      float64
	message       string
	sourceDetails *SourceDetails
	err           error
	listeners     []func(Event)
}

// NewTracker creates a new Tracker instance
func NewTracker() *Tracker {
	return &Tracker{
		stage:     StageInitializing,
		listeners: make([]func(Event), 0),
	}
}

// AddListener adds a new progress event listener. Listeners run
// synchronously and must not call back into the tracker.
func (pt *Tracker) AddListener(listener func(Event)) {
	if pt == nil {
		return
	}
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.listeners = append(pt.listeners, listener)
}

// Update updates the progress and notifies all listeners
func (pt *Tracker) Update(stage Stage, progress float64, message string) {
	if pt == nil {
		return
	}
	pt.mu.Lock()
	pt.stage = stage
	pt.progress = progress
	pt.message = message
	pt.mu.Unlock()

	pt.notifyListeners(Event{
		Stage:     stage,
		Progress:  progress,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// SourceLoaded records a loaded source and notifies all listeners
func (pt *Tracker) SourceLoaded(details SourceDetails) {
	if pt == nil {
		return
	}
	pt.mu.Lock()
	pt.sourceDetails = &details
	event := Event{
		Stage:         pt.stage,
		Progress:      pt.progress,
		Message:       "Loaded " + details.Role + " source",
		Timestamp:     time.Now(),
		SourceDetails: &details,
	}
	pt.mu.Unlock()

	pt.notifyListeners(event)
}

// SetError sets an error state and notifies all listeners
func (pt *Tracker) SetError(err error) {
	if pt == nil || err == nil {
		return
	}
	pt.mu.Lock()
	pt.stage = StageError
	pt.err = err
	progress := pt.progress
	pt.mu.Unlock()

	pt.notifyListeners(Event{
		Stage:     StageError,
		Progress:  progress,
		Message:   err.Error(),
		Timestamp: time.Now(),
		Error:     err.Error(),
	})
}

// notifyListeners sends an event to all registered listeners
func (pt *Tracker) notifyListeners(event Event) {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	for _, listener := range pt.listeners {
		listener(event)
	}
}

// Current returns the current progress state
func (pt *Tracker) Current() Event {
	if pt == nil {
		return Event{Stage: StageInitializing, Timestamp: time.Now()}
	}
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	event := Event{
		Stage:         pt.stage,
		Progress:      pt.progress,
		Message:       pt.message,
		Timestamp:     time.Now(),
		SourceDetails: pt.sourceDetails,
	}
	if pt.err != nil {
		event.Error = pt.err.Error()
	}
	return event
}

// MarshalJSON implements json.Marshaler for Event
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	return json.Marshal(&struct {
		Timestamp string `json:"timestamp"`
		*Alias
	}{
		Timestamp: e.Timestamp.Format(time.RFC3339),
		Alias:     (*Alias)(&e),
	})
}
