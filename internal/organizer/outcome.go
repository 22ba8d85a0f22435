package organizer

import (
	"time"
)

// Status classifies what happened to one matched file.
type Status string

const (
	StatusMoved   Status = "moved"
	StatusUndated Status = "undated"
	StatusFailed  Status = "failed"
	// StatusPlanned marks a dated file in a dry run.
	StatusPlanned Status = "planned"
)

// Outcome is the per-file result of a run.
type Outcome struct {
	Source      string
	Destination string
	Date        time.Time
	Converted   string
	Bytes       int64
	Status      Status
	Err         error
}

// Summary aggregates a run.
type Summary struct {
	RunID       string
	Source      string
	Destination string
	DryRun      bool
	Canceled    bool
	StartedAt   time.Time
	Duration    time.Duration

	// Scanned counts every file in the source directory; Matched those with a
	// raw extension.
	Scanned   int
	Matched   int
	Moved     int
	Undated   int
	Failed    int
	Converted int
	Bytes     int64

	Outcomes []Outcome
}

// OK reports whether the run finished without failed files or cancellation.
func (s Summary) OK() bool {
	return s.Failed == 0 && !s.Canceled
}

func (s *Summary) add(outcome Outcome) {
	s.Outcomes = append(s.Outcomes, outcome)
	switch outcome.Status {
	case StatusMoved, StatusPlanned:
		s.Moved++
		s.Bytes += outcome.Bytes
		if outcome.Converted != "" {
			s.Converted++
		}
	case StatusUndated:
		s.Undated++
	case StatusFailed:
		s.Failed++
	}
}
