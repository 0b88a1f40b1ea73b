package jobs

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Defaults for blank posting fields.
const (
	UnknownCompany  = "Unknown Company"
	UnknownTitle    = "Unknown Title"
	UnknownLocation = "Not specified"

	descriptionRunes = 200
)

// PlainText converts an HTML fragment to whitespace-collapsed text.
func PlainText(s string) string {
	if strings.ContainsRune(s, '<') {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// Clean trims fields and fills in defaults for blank ones.
func Clean(p *Posting) {
	p.Title = orDefault(p.Title, UnknownTitle)
	p.Company = orDefault(p.Company, UnknownCompany)
	p.Location = orDefault(p.Location, UnknownLocation)
	p.URL = strings.TrimSpace(p.URL)
	p.Description = PlainText(p.Description)
}

// Dedup removes postings with the same title, company and location keeping
// the first one.
func Dedup(p *Postings) []string {
	seen := make(map[[3]string]struct{}, p.Len())
	return p.Keep(func(posting *Posting) bool {
		key := [3]string{posting.Title, posting.Company, posting.Location}
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
}

// ToListing maps a cleaned posting to the response shape.
func ToListing(p *Posting, skills []string) Listing {
	id := p.ID
	if id == "" {
		id = p.URL
	}
	url := p.URL
	if url == "" {
		url = "#"
	}

	description := []rune(p.Description)
	if len(description) > descriptionRunes {
		description = description[:descriptionRunes]
	}

	return Listing{
		ID:          id,
		Title:       p.Title,
		Company:     p.Company,
		Location:    p.Location,
		URL:         url,
		Description: string(description) + "...",
		Source:      SourceExternal,
		Relevance:   Relevance(p, skills),
	}
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
