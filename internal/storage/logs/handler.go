// Package logs mirrors slog records into a persistent sink.
package logs

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Top-level attributes with these keys are stored in their own columns
// instead of the attrs document.
const (
	KeyCommand = "command"
	KeyMatchID = "match_id"
)

const defaultWriteTimeout = 2 * time.Second

type Record struct {
	Time    time.Time
	Level   string
	Message string
	Command string
	MatchID string
	Attrs   map[string]any
}

type Sink interface {
	WriteLog(ctx context.Context, record Record) error
}

// Handler is a slog.Handler that writes each record to a Sink. It is meant
// to sit behind slog.NewMultiHandler next to a console handler.
type Handler struct {
	sink    Sink
	level   slog.Leveler
	timeout time.Duration
	attrs   []slog.Attr
	groups  []string
}

func NewHandler(sink Sink, level slog.Leveler, timeout time.Duration) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return &Handler{sink: sink, level: level, timeout: timeout}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h != nil && h.sink != nil && level >= h.level.Level()
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if h == nil || h.sink == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rec := Record{
		Time:    r.Time,
		Level:   r.Level.String(),
		Message: r.Message,
		Attrs:   make(map[string]any),
	}
	for _, attr := range h.attrs {
		h.collect(&rec, attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		h.collect(&rec, h.recordScope(attr))
		return true
	})

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancel()
	if err := h.sink.WriteLog(ctx, rec); err != nil {
		return fmt.Errorf("write log record: %w", err)
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	next := *h
	scoped := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		scoped = append(scoped, h.recordScope(attr))
	}
	next.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], scoped...)
	return &next
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(h.groups[:len(h.groups):len(h.groups)], name)
	return &next
}

func (h *Handler) collect(rec *Record, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindString {
		switch attr.Key {
		case KeyCommand:
			rec.Command = attr.Value.String()
			return
		case KeyMatchID:
			rec.MatchID = attr.Value.String()
			return
		}
	}
	mergeAttr(rec.Attrs, attr)
}

// recordScope nests attr inside the handler's open groups.
func (h *Handler) recordScope(attr slog.Attr) slog.Attr {
	for i := len(h.groups) - 1; i >= 0; i-- {
		attr = slog.Attr{Key: h.groups[i], Value: slog.GroupValue(attr)}
	}
	return attr
}

func mergeAttr(m map[string]any, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() != slog.KindGroup {
		m[attr.Key] = nativeValue(attr.Value)
		return
	}

	target := m
	if attr.Key != "" {
		sub, ok := m[attr.Key].(map[string]any)
		if !ok {
			sub = make(map[string]any)
			m[attr.Key] = sub
		}
		target = sub
	}
	for _, child := range attr.Value.Group() {
		mergeAttr(target, child)
	}
}

func nativeValue(value slog.Value) any {
	switch value.Kind() {
	case slog.KindBool:
		return value.Bool()
	case slog.KindDuration:
		return value.Duration().String()
	case slog.KindFloat64:
		return value.Float64()
	case slog.KindInt64:
		return value.Int64()
	case slog.KindString:
		return value.String()
	case slog.KindTime:
		return value.Time().UTC()
	case slog.KindUint64:
		return value.Uint64()
	}
	switch typed := value.Any().(type) {
	case error:
		return typed.Error()
	case fmt.Stringer:
		return typed.String()
	default:
		return typed
	}
}
