package mock_generator

import "slide-narrator/domain"

// MockEvent is one line of the replay fixture. Delay is in seconds and is
// waited before the event is emitted.
type MockEvent struct {
	Stage   domain.BuildStage `json:"stage"`
	Message string            `json:"message"`
	Page    int               `json:"page,omitempty"`
	Delay   float64           `json:"delay"`
}
