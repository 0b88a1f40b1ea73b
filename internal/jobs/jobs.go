package jobs

import (
	"context"
	"strings"
	"time"
)

// Fields usable with Postings.Exclude.
const (
	PostingIDField      = "ID"
	PostingCompanyField = "Company"
)

// SourceExternal is the source reported for every scraped listing.
const SourceExternal = "external"

// Pacer gates outgoing board requests. *rate.Limiter satisfies it.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Query is a single board search.
type Query struct {
	Term     string
	Location string
	Limit    int
	HoursOld int
	// Pacer, when set, is waited on before every request a board sends,
	// including follow-up pages.
	Pacer Pacer
}

// Pace blocks until the next request for q may be sent.
func (q Query) Pace(ctx context.Context) error {
	if q.Pacer == nil {
		return nil
	}
	return q.Pacer.Wait(ctx)
}

// Board searches one job site.
type Board interface {
	Name() string
	Search(ctx context.Context, q Query) (*Postings, error)
}

// Posting is a raw job posting as returned by a board.
type Posting struct {
	ID          string
	Site        string
	Title       string
	Company     string
	Location    string
	Description string
	URL         string
	PostedAt    time.Time
}

// Postings is an ordered list of postings.
type Postings struct {
	Items []*Posting
}

// Listing is the job search response entry.
type Listing struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	Location    string  `json:"location"`
	URL         string  `json:"url"`
	Description string  `json:"description"`
	Source      string  `json:"source"`
	Relevance   float64 `json:"relevance"`
}

func (p *Posting) GetStringField(name string) string {
	switch name {
	case PostingIDField:
		return p.ID
	case PostingCompanyField:
		return p.Company
	default:
		return ""
	}
}

func (p *Postings) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Items)
}

// Append adds postings from s keeping their order.
func (p *Postings) Append(s *Postings) {
	if s == nil {
		return
	}
	p.Items = append(p.Items, s.Items...)
}

// Exclude removes postings whose field equals one of targets, case-insensitively.
// It returns the IDs of removed postings.
func (p *Postings) Exclude(name string, targets []string) []string {
	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		target = strings.ToLower(strings.TrimSpace(target))
		if target != "" {
			set[target] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}

	return p.Keep(func(posting *Posting) bool {
		_, found := set[strings.ToLower(strings.TrimSpace(posting.GetStringField(name)))]
		return !found
	})
}

// Keep retains postings for which keep returns true and returns the IDs of
// the dropped ones. Order is preserved.
func (p *Postings) Keep(keep func(*Posting) bool) []string {
	var dropped []string
	kept := p.Items[:0]
	for _, posting := range p.Items {
		if keep(posting) {
			kept = append(kept, posting)
			continue
		}
		dropped = append(dropped, posting.ID)
	}
	for i := len(kept); i < len(p.Items); i++ {
		p.Items[i] = nil
	}
	p.Items = kept
	return dropped
}

// RemoveByIndex removes a posting by index preserving order.
func (p *Postings) RemoveByIndex(idx int) {
	if idx < 0 || idx >= len(p.Items) {
		return
	}
	p.Items = append(p.Items[:idx], p.Items[idx+1:]...)
}
