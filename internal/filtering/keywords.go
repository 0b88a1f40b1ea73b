package filtering

import (
	"context"

	"github.com/spigell/liquidhire/internal/jobs"
	"go.uber.org/zap"
)

type internshipFilter struct {
	toggle
}

// NewInternship creates a filter that keeps postings mentioning an internship
// keyword in the title or description.
func NewInternship() Filter {
	return &internshipFilter{}
}

func (f *internshipFilter) Name() string { return "internship" }

func (f *internshipFilter) Validate(*Config) error { return nil }

func (f *internshipFilter) Apply(_ context.Context, deps Deps, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()
	dropped := p.Keep(func(posting *jobs.Posting) bool {
		return jobs.IsInternship(posting.Title, posting.Description)
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding postings without internship keywords",
			zap.Strings("excluded_postings", dropped),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}

func (f *internshipFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type notSeniorFilter struct {
	toggle
}

// NewNotSenior creates a filter that removes senior, lead and management titles.
func NewNotSenior() Filter {
	return &notSeniorFilter{}
}

func (f *notSeniorFilter) Name() string { return "not_senior" }

func (f *notSeniorFilter) Validate(*Config) error { return nil }

func (f *notSeniorFilter) Apply(_ context.Context, deps Deps, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()
	dropped := p.Keep(func(posting *jobs.Posting) bool {
		return !jobs.IsSenior(posting.Title)
	})
	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Debug("excluding senior postings",
			zap.Strings("excluded_postings", dropped),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(dropped), Left: p.Len()}, nil
}

func (f *notSeniorFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
