package filtering

import (
	"context"
	"strconv"
	"time"

	"github.com/spigell/liquidhire/internal/jobs"
	"go.uber.org/zap"
)

type postedWithinFilter struct {
	toggle
	maxAge time.Duration
	now    func() time.Time
}

// NewPostedWithin creates a filter that removes postings older than the
// configured age. Postings without a publication date are kept.
func NewPostedWithin() Filter {
	return &postedWithinFilter{}
}

func (f *postedWithinFilter) Name() string { return "posted_within" }

func (f *postedWithinFilter) Validate(cfg *Config) error {
	f.maxAge = 0
	f.now = time.Now
	if cfg == nil {
		return nil
	}
	if cfg.HoursOld > 0 {
		f.maxAge = time.Duration(cfg.HoursOld) * time.Hour
	}
	if cfg.Now != nil {
		f.now = cfg.Now
	}
	return nil
}

func (f *postedWithinFilter) Apply(_ context.Context, deps Deps, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()
	if f.maxAge <= 0 {
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	cutoff := f.now().Add(-f.maxAge)
	dropped := p.Keep(func(posting *jobs.Posting) bool {
		return posting.PostedAt.IsZero() || !posting.PostedAt.Before(cutoff)
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding stale postings",
			zap.Time("cutoff", cutoff),
			zap.Strings("excluded_postings", dropped),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}

func (f *postedWithinFilter) Status() Status {
	details := map[string]string{}
	if f.maxAge > 0 {
		details["hours_old"] = strconv.Itoa(int(f.maxAge / time.Hour))
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
