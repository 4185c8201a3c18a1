package services

import "context"

type contextKey string

const (
	segmentKey       contextKey = "segment"
	stationKey       contextKey = "station"
	correlationIDKey contextKey = "correlation_id"
)

// WithSegment annotates context with the segment filename being processed.
func WithSegment(ctx context.Context, filename string) context.Context {
	if filename == "" {
		return ctx
	}
	return context.WithValue(ctx, segmentKey, filename)
}

// SegmentFromContext extracts the segment filename if present.
func SegmentFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(segmentKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStation annotates context with the station identifier.
func WithStation(ctx context.Context, station string) context.Context {
	if station == "" {
		return ctx
	}
	return context.WithValue(ctx, stationKey, station)
}

// StationFromContext returns the station identifier if present.
func StationFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stationKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCorrelationID annotates context with a correlation identifier so one
// placement attempt can be traced across lock, move, and notify.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext extracts the correlation identifier if present.
func CorrelationIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(correlationIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
