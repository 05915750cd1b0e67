package log

import (
	"time"

	"github.com/google/uuid"
)

// Session stamps events of one asset loop run with a shared session ID.
type Session struct {
	logger  Logger
	id      string
	assetID string
	area    string
	now     func() time.Time
}

// NewSession starts a capture session for an asset. A nil logger is
// replaced by NoopLogger.
func NewSession(logger Logger, assetID, area string) *Session {
	if logger == nil {
		logger = NoopLogger{}
	}
	return &Session{
		logger:  logger,
		id:      uuid.NewString(),
		assetID: assetID,
		area:    area,
		now:     time.Now,
	}
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) event(layer Layer, category Category) Event {
	return Event{
		Timestamp: s.now(),
		SessionID: s.id,
		AssetID:   s.assetID,
		Area:      s.area,
		Layer:     layer,
		Category:  category,
	}
}

// Publish records a publish attempt. A nil err means delivered.
func (s *Session) Publish(p PublishEvent, err error) {
	if err != nil {
		p.Outcome = OutcomeFailed
		p.Reason = err.Error()
	} else {
		p.Outcome = OutcomeDelivered
		p.Reason = ""
	}
	e := s.event(LayerTransport, CategoryPublish)
	e.Publish = &p
	s.logger.Log(e)
}

// ConnectionState records a bus session state transition.
func (s *Session) ConnectionState(oldState, newState string, reason error) {
	e := s.event(LayerTransport, CategoryState)
	e.StateChange = &StateChangeEvent{
		Entity:   StateEntityConnection,
		OldState: oldState,
		NewState: newState,
	}
	if reason != nil {
		e.StateChange.Reason = reason.Error()
	}
	s.logger.Log(e)
}

// LoopState records the loop starting or stopping.
func (s *Session) LoopState(oldState, newState, reason string) {
	e := s.event(LayerSimulation, CategoryState)
	e.StateChange = &StateChangeEvent{
		Entity:   StateEntityLoop,
		OldState: oldState,
		NewState: newState,
		Reason:   reason,
	}
	s.logger.Log(e)
}

// Error records an error that is not tied to a single publish.
func (s *Session) Error(layer Layer, err error, context string) {
	if err == nil {
		return
	}
	e := s.event(layer, CategoryError)
	e.Error = &ErrorEventData{
		Layer:   layer,
		Message: err.Error(),
		Context: context,
	}
	s.logger.Log(e)
}
