package service

import (
	"context"
	"errors"
	"fmt"

	"weather_station/internal/models"

	"github.com/spf13/cast"
)

// DirectiveSink receives directives for the engine. *Engine implements it.
type DirectiveSink interface {
	Enqueue(d models.ControlDirective) error
}

type ControlService struct {
	sink DirectiveSink
}

func NewControlService(sink DirectiveSink) *ControlService {
	return &ControlService{sink: sink}
}

const maxIntervalMin = 60

// ErrInvalidDirective wraps every rejection caused by the directive content.
var ErrInvalidDirective = errors.New("invalid directive")

var (
	errEmptyDirective   = fmt.Errorf("%w: no recognized keys", ErrInvalidDirective)
	errIntervalRange    = fmt.Errorf("%w: upload intervals must be between 0 and %d", ErrInvalidDirective, maxIntervalMin)
	errTerminalValue    = fmt.Errorf("%w: %s, %s and %s only accept true", ErrInvalidDirective, keyShutdown, keyReboot, keyStopApp)
	errEngineNotRunning = errors.New("engine is not accepting directives")
)

// SubmitDirective parses raw using the same keys as a primary collector
// response and queues it for the engine.
func (s *ControlService) SubmitDirective(ctx context.Context, raw map[string]any) (models.ControlDirective, error) {
	if err := ctx.Err(); err != nil {
		return models.ControlDirective{}, err
	}
	if s.sink == nil {
		return models.ControlDirective{}, errEngineNotRunning
	}

	// a collector response acts on key presence; an operator has to mean it
	for _, key := range []string{keyShutdown, keyReboot, keyStopApp} {
		if v, ok := raw[key]; ok {
			if on, err := cast.ToBoolE(v); err != nil || !on {
				return models.ControlDirective{}, errTerminalValue
			}
		}
	}

	d, err := ParseDirective(raw)
	if err != nil {
		return models.ControlDirective{}, fmt.Errorf("%w: %v", ErrInvalidDirective, err)
	}
	if d.Empty() {
		return models.ControlDirective{}, errEmptyDirective
	}
	for _, n := range []*int{d.PrimaryIntervalMin, d.SecondaryIntervalMin} {
		if n != nil && (*n < 0 || *n > maxIntervalMin) {
			return models.ControlDirective{}, errIntervalRange
		}
	}

	if err := s.sink.Enqueue(d); err != nil {
		return models.ControlDirective{}, err
	}
	return d, nil
}
