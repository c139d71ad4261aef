// Package quotelog builds the positional quote record and hands it to the
// configured sinks (a log tab in the sheets, a Postgres table, or both).
package quotelog

import (
	"context"
	"errors"
	"sync"
	"time"

	"freightquote/internal/rate"
)

// Channel is written in the channel column of every record.
const Channel = "WhatsApp"

// TimeLayout formats the timestamp column.
const TimeLayout = "2006-01-02 15:04:05"

// Record is one delivered quote.
type Record struct {
	Timestamp   time.Time
	UserID      string
	Company     string
	Mode        rate.Mode
	Origin      string
	Destination string
	Weight      string
	Volume      string
	Modality    string
	Total       float64
	Summary     string
}

// Values returns the 13 log columns in order: timestamp, user id, reserved,
// company, channel, mode, origin, destination, weight, volume, modality,
// total, summary.
func (r Record) Values() []string {
	return []string{
		r.Timestamp.Format(TimeLayout),
		r.UserID,
		"",
		r.Company,
		Channel,
		string(r.Mode),
		r.Origin,
		r.Destination,
		r.Weight,
		r.Volume,
		r.Modality,
		rate.FormatAmount(r.Total),
		r.Summary,
	}
}

// Sink stores quote records.
type Sink interface {
	Append(ctx context.Context, r Record) error
}

// Multi appends to every sink and joins their errors.
type Multi []Sink

func (m Multi) Append(ctx context.Context, r Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MemorySink keeps records in memory.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

func (m *MemorySink) Append(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	return nil
}

// Records returns a copy of the stored records.
func (m *MemorySink) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.records...)
}
