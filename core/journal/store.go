package journal

import (
	"context"
	"time"
)

// Record captures one command run against the jump vector.
type Record struct {
	Timestamp     time.Time `json:"timestamp"`
	CommandID     string    `json:"command_id"`
	Code          uint32    `json:"code"`
	Value         byte      `json:"value"`
	Outcome       string    `json:"outcome"`
	Result        bool      `json:"result"`
	Panicked      bool      `json:"panicked,omitempty"`
	Source        string    `json:"source,omitempty"`
	LatencyMicros int64     `json:"latency_us"`
}

// Query defines filters for retrieving records. Zero values match
// everything. Limit keeps only the newest Limit matches.
type Query struct {
	Start   time.Time
	End     time.Time
	Code    *uint32
	Outcome string
	Limit   int
}

// Match reports whether r passes the time, code and outcome filters.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Code != nil && r.Code != *q.Code {
		return false
	}
	if q.Outcome != "" && r.Outcome != q.Outcome {
		return false
	}
	return true
}

func (q Query) limit(recs []Record) []Record {
	if q.Limit > 0 && len(recs) > q.Limit {
		return recs[len(recs)-q.Limit:]
	}
	return recs
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error          { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                  { return nil }
