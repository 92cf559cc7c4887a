package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is an audit log entry: one per successful state-changing action. The
// log is append-only; records are never rewritten once stamped.
type Record struct {
	ID         string
	Type       string
	Attributes map[string]string
	EmittedAt  int64
}

// Recorder accumulates emitted events as stamped audit records.
type Recorder struct {
	mu      sync.Mutex
	nowFn   func() int64
	records []Record
}

// NewRecorder returns an empty audit recorder.
func NewRecorder() *Recorder {
	return &Recorder{nowFn: func() int64 { return time.Now().Unix() }}
}

// SetNowFunc overrides the record timestamp source, primarily for tests.
func (r *Recorder) SetNowFunc(now func() int64) {
	if now == nil {
		r.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	r.nowFn = now
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt *Event) {
	if r == nil || evt == nil {
		return
	}
	attrs := make(map[string]string, len(evt.Attributes))
	for k, v := range evt.Attributes {
		attrs[k] = v
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{
		ID:         uuid.NewString(),
		Type:       evt.Type,
		Attributes: attrs,
		EmittedAt:  r.nowFn(),
	})
}

// Records returns a copy of the accumulated audit log in emission order.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// LogEmitter forwards events to a structured logger. The daemon wires it in
// front of the audit recorder so operators can follow order activity live.
type LogEmitter struct {
	logger *slog.Logger
	next   Emitter
}

// NewLogEmitter returns an emitter that logs each event and then hands it to
// next. A nil logger falls back to the default slog logger; a nil next is
// treated as a no-op sink.
func NewLogEmitter(logger *slog.Logger, next Emitter) *LogEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	if next == nil {
		next = NoopEmitter{}
	}
	return &LogEmitter{logger: logger, next: next}
}

// Emit implements the Emitter interface.
func (l *LogEmitter) Emit(evt *Event) {
	if l == nil || evt == nil {
		return
	}
	args := make([]any, 0, len(evt.Attributes)*2)
	for k, v := range evt.Attributes {
		args = append(args, slog.String(k, v))
	}
	l.logger.Info(evt.Type, args...)
	l.next.Emit(evt)
}
