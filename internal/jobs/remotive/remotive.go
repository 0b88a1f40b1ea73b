package remotive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spigell/liquidhire/internal/jobs"
	"go.uber.org/zap"
)

const (
	// Name is the board name used in configuration and logs.
	Name = "remotive"

	apiURL     = "https://remotive.com"
	searchPath = "/api/remote-jobs"
	dateLayout = "2006-01-02T15:04:05"
)

// Board searches the Remotive remote jobs API. Every posting is remote, so
// the query location is not sent.
type Board struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	APIURL     string
}

type response struct {
	Jobs []job `json:"jobs"`
}

type job struct {
	ID              int64  `json:"id"`
	URL             string `json:"url"`
	Title           string `json:"title"`
	CompanyName     string `json:"company_name"`
	Location        string `json:"candidate_required_location"`
	Description     string `json:"description"`
	PublicationDate string `json:"publication_date"`
}

func New(logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{
		logger:     logger,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		APIURL:     apiURL,
	}
}

func (b *Board) Name() string { return Name }

func (b *Board) Search(ctx context.Context, q jobs.Query) (*jobs.Postings, error) {
	params := url.Values{}
	params.Set("search", q.Term)
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	if err := q.Pace(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.APIURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	b.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := b.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	postings := &jobs.Postings{Items: make([]*jobs.Posting, 0, len(body.Jobs))}
	for _, j := range body.Jobs {
		postings.Items = append(postings.Items, j.posting())
	}

	if q.Limit > 0 && postings.Len() > q.Limit {
		postings.Items = postings.Items[:q.Limit]
	}

	return postings, nil
}

func (j job) posting() *jobs.Posting {
	posting := &jobs.Posting{
		Site:        Name,
		Title:       j.Title,
		Company:     j.CompanyName,
		Location:    j.Location,
		Description: jobs.PlainText(j.Description),
		URL:         j.URL,
	}
	if j.ID != 0 {
		posting.ID = "rm-" + strconv.FormatInt(j.ID, 10)
	}
	if published, err := time.Parse(dateLayout, j.PublicationDate); err == nil {
		posting.PostedAt = published
	}
	return posting
}
