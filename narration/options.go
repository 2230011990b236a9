package narration

import (
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/lixenwraith/narrator/observability"
	"github.com/lixenwraith/narrator/status"
)

// Options carries the ambient collaborators shared by narration components
// Zero value is valid: logs are discarded, spans are no-ops, metrics are detached
type Options struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics *status.Registry
}

// WithDefaults fills unset fields
func (o Options) WithDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Tracer == nil {
		o.Tracer = observability.NoopTracer()
	}
	return o
}
