package headhunter

import (
	"strings"
	"time"

	"github.com/spigell/liquidhire/internal/jobs"
)

const publishedLayout = "2006-01-02T15:04:05-0700"

type Vacancies struct {
	Items []*Vacancy
}

type Vacancy struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Area struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"area,omitempty"`
	Schedule struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"schedule,omitempty"`
	Employer struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employer,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	Snipet       struct {
		Requirement    string `json:"requirement,omitempty"`
		Responsibility string `json:"responsibility,omitempty"`
	} `json:"snippet,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

func (v *Vacancies) Len() int {
	return len(v.Items)
}

// Postings converts vacancies to board-neutral postings.
func (v *Vacancies) Postings() *jobs.Postings {
	postings := &jobs.Postings{Items: make([]*jobs.Posting, 0, len(v.Items))}
	for _, vacancy := range v.Items {
		postings.Items = append(postings.Items, vacancy.Posting())
	}
	return postings
}

// Posting converts a vacancy. The snippet carries highlight markup, so
// description text is HTML-stripped.
func (va *Vacancy) Posting() *jobs.Posting {
	location := va.Area.Name
	if va.Schedule.ID == scheduleRemote {
		location = "Remote"
	}

	var id string
	if va.ID != "" {
		id = "hh-" + va.ID
	}

	description := strings.TrimSpace(jobs.PlainText(va.Snipet.Requirement) + " " + jobs.PlainText(va.Snipet.Responsibility))

	posting := &jobs.Posting{
		ID:          id,
		Site:        Name,
		Title:       va.Name,
		Company:     va.Employer.Name,
		Location:    location,
		Description: description,
		URL:         va.AlternateURL,
	}
	if published, err := time.Parse(publishedLayout, va.PublishedAt); err == nil {
		posting.PostedAt = published
	}
	return posting
}
