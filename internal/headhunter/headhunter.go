package headhunter

import (
	"context"
	"net/http"
	"time"

	"github.com/spigell/liquidhire/internal/jobs"
	"go.uber.org/zap"
)

const (
	// Name is the board name used in configuration and logs.
	Name = "headhunter"

	apiURL    = "https://api.hh.ru"
	userAgent = "liquidhire/1.0 (internship-search)"
	// Max value for search per page.
	maxPerPage = 100
)

// Client is a read-only client of the public hh.ru vacancies API.
type Client struct {
	// token is optional; public search works without it.
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

func (c *Client) Name() string { return Name }

// Search implements jobs.Board.
func (c *Client) Search(ctx context.Context, q jobs.Query) (*jobs.Postings, error) {
	vacancies, err := c.search(ctx, NewSearchParams(q), q.Limit, q.Pace)
	if err != nil {
		return nil, err
	}
	return vacancies.Postings(), nil
}
