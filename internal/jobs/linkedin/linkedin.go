package linkedin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/spigell/liquidhire/internal/jobs"
	"go.uber.org/zap"
)

const (
	// Name is the board name used in configuration and logs.
	Name = "linkedin"

	baseURL    = "https://www.linkedin.com"
	searchPath = "/jobs-guest/jobs/api/seeMoreJobPostings/search"
	userAgent  = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	urnPrefix  = "urn:li:jobPosting:"
	dateLayout = "2006-01-02"

	maxPages = 10
)

// Board searches the LinkedIn guest job listing endpoint.
type Board struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
}

func New(logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{
		logger:     logger,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    baseURL,
		UserAgent:  userAgent,
	}
}

func (b *Board) Name() string { return Name }

// Search pages through result cards until q.Limit postings are collected or
// a page comes back empty.
func (b *Board) Search(ctx context.Context, q jobs.Query) (*jobs.Postings, error) {
	postings := &jobs.Postings{}

	for page := 0; page < maxPages; page++ {
		if q.Limit > 0 && postings.Len() >= q.Limit {
			break
		}

		if err := q.Pace(ctx); err != nil {
			return nil, err
		}

		found, err := b.fetch(ctx, q, postings.Len())
		if err != nil {
			return nil, err
		}
		if found.Len() == 0 {
			break
		}
		postings.Append(found)
	}

	if q.Limit > 0 && postings.Len() > q.Limit {
		postings.Items = postings.Items[:q.Limit]
	}

	return postings, nil
}

func (b *Board) fetch(ctx context.Context, q jobs.Query, start int) (*jobs.Postings, error) {
	params := url.Values{}
	params.Set("keywords", q.Term)
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	if q.HoursOld > 0 {
		params.Set("f_TPR", fmt.Sprintf("r%d", q.HoursOld*3600))
	}
	params.Set("start", strconv.Itoa(start))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.BaseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", b.UserAgent)
	req.Header.Set("Accept", "text/html")

	b.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := b.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return parseCards(doc), nil
}

func parseCards(doc *goquery.Document) *jobs.Postings {
	postings := &jobs.Postings{}

	doc.Find("div.base-card").Each(func(_ int, card *goquery.Selection) {
		posting := &jobs.Posting{
			Site:     Name,
			Title:    text(card.Find("h3.base-search-card__title")),
			Company:  text(card.Find("h4.base-search-card__subtitle")),
			Location: text(card.Find("span.job-search-card__location")),
		}

		if urn, ok := card.Attr("data-entity-urn"); ok {
			if id := strings.TrimPrefix(urn, urnPrefix); id != "" && id != urn {
				posting.ID = "li-" + id
			}
		}

		if href, ok := card.Find("a.base-card__full-link").Attr("href"); ok {
			posting.URL = stripQuery(href)
		}

		if datetime, ok := card.Find("time").Attr("datetime"); ok {
			if posted, err := time.Parse(dateLayout, datetime); err == nil {
				posting.PostedAt = posted
			}
		}

		postings.Items = append(postings.Items, posting)
	})

	return postings
}

func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.First().Text()), " ")
}

// stripQuery drops tracking parameters from a job link.
func stripQuery(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
