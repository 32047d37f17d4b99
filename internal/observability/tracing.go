package observability

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"
)

// Span records one traced operation, an HTTP request or the startup dataset
// load. Spans nest through the context, so work started inside a request
// handler inherits its trace ID.
type Span struct {
	TraceID   string
	SpanID    string
	ParentID  string
	Operation string
	Start     time.Time
	End       time.Time
	Tags      map[string]string
	Status    SpanStatus
	Err       string
}

type SpanStatus string

const (
	SpanStatusOK    SpanStatus = "OK"
	SpanStatusError SpanStatus = "ERROR"
)

type spanContextKey struct{}

// StartSpan opens a span under the one already in ctx, if any, and returns
// the derived context carrying it.
func StartSpan(ctx context.Context, operation string) (context.Context, *Span) {
	span := &Span{
		TraceID:   newSpanID(),
		SpanID:    newSpanID(),
		Operation: operation,
		Start:     time.Now(),
		Status:    SpanStatusOK,
		Tags:      make(map[string]string),
	}

	if parent := GetSpan(ctx); parent != nil {
		span.TraceID = parent.TraceID
		span.ParentID = parent.SpanID
	}

	return context.WithValue(ctx, spanContextKey{}, span), span
}

// Finish stamps the end time.
func (s *Span) Finish() {
	s.End = time.Now()
}

// Elapsed is the span duration, still ticking while the span is open.
func (s *Span) Elapsed() time.Duration {
	if s.End.IsZero() {
		return time.Since(s.Start)
	}
	return s.End.Sub(s.Start)
}

func (s *Span) SetTag(key, value string) {
	if s.Tags == nil {
		s.Tags = make(map[string]string)
	}
	s.Tags[key] = value
}

func (s *Span) SetError(err error) {
	s.Status = SpanStatusError
	if err != nil {
		s.Err = err.Error()
	}
}

// LogValue renders the span as one structured group, so a finished span can
// be passed straight to slog.
func (s *Span) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("trace_id", s.TraceID),
		slog.String("span_id", s.SpanID),
		slog.String("operation", s.Operation),
		slog.Duration("elapsed", s.Elapsed()),
		slog.String("status", string(s.Status)),
	}
	if s.ParentID != "" {
		attrs = append(attrs, slog.String("parent_id", s.ParentID))
	}
	if s.Err != "" {
		attrs = append(attrs, slog.String("error", s.Err))
	}
	return slog.GroupValue(attrs...)
}

func GetSpan(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanContextKey{}).(*Span); ok {
		return span
	}
	return nil
}

func newSpanID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
