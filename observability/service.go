package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// shutdownTimeout bounds the final span flush
const shutdownTimeout = 5 * time.Second

// TracingService owns the tracer provider lifecycle
type TracingService struct {
	cfg Config
	tp  *TracerProvider
}

// NewTracingService creates a disabled tracing service until Init receives a Config
func NewTracingService() *TracingService {
	return &TracingService{}
}

func (s *TracingService) Name() string { return "tracing" }

func (s *TracingService) Dependencies() []string { return nil }

// Init accepts a Config
func (s *TracingService) Init(args ...any) error {
	for _, arg := range args {
		cfg, ok := arg.(Config)
		if !ok {
			return fmt.Errorf("tracing: unexpected init arg %T", arg)
		}
		s.cfg = cfg
	}
	return nil
}

func (s *TracingService) Start() error {
	tp, err := InitTracing(context.Background(), s.cfg)
	if err != nil {
		return err
	}
	s.tp = tp
	return nil
}

func (s *TracingService) Stop() error {
	if s.tp == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.tp.Shutdown(ctx)
	s.tp = nil
	return err
}

// Tracer returns the active tracer, no-op before Start
func (s *TracingService) Tracer() trace.Tracer {
	return s.tp.Tracer()
}
