package scraper

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spigell/liquidhire/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeBoard struct {
	name string
	fn   func(q jobs.Query) (*jobs.Postings, error)

	mu      sync.Mutex
	queries []jobs.Query
}

func (b *fakeBoard) Name() string { return b.name }

func (b *fakeBoard) Search(_ context.Context, q jobs.Query) (*jobs.Postings, error) {
	b.mu.Lock()
	b.queries = append(b.queries, q)
	b.mu.Unlock()
	return b.fn(q)
}

type memoryCache struct {
	data map[string][]jobs.Listing
	err  error
}

func (c *memoryCache) Get(_ context.Context, key string) ([]jobs.Listing, bool, error) {
	if c.err != nil {
		return nil, false, c.err
	}
	listings, ok := c.data[key]
	return listings, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, listings []jobs.Listing) error {
	if c.err != nil {
		return c.err
	}
	c.data[key] = listings
	return nil
}

func termPostings(site string) func(q jobs.Query) (*jobs.Postings, error) {
	return func(q jobs.Query) (*jobs.Postings, error) {
		skill := strings.TrimSuffix(q.Term, " internship")
		return &jobs.Postings{Items: []*jobs.Posting{
			{ID: site + "-" + skill, Title: skill + " Intern", Company: "Acme", Location: q.Location, URL: "https://example.com/" + skill},
			{ID: site + "-senior-" + skill, Title: "Senior " + skill + " Engineer", Company: "Acme"},
		}}, nil
	}
}

func newTestScraper(t *testing.T, boards []jobs.Board, cfg Config, opts ...Option) (*Scraper, *[]time.Duration) {
	t.Helper()
	var waits []time.Duration
	s := New(zaptest.NewLogger(t), boards, cfg, opts...)
	s.wait = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return s, &waits
}

func TestSearchAcrossTermsAndBoards(t *testing.T) {
	a := &fakeBoard{name: "a", fn: termPostings("a")}
	b := &fakeBoard{name: "b", fn: termPostings("b")}

	s, waits := newTestScraper(t, []jobs.Board{a, b}, Config{Delay: time.Second})

	listings, err := s.Search(context.Background(), "Go, SQL, Rust, Kafka", "")
	require.NoError(t, err)

	assert.Len(t, a.queries, 3, "only the first three skills are searched")
	assert.Equal(t, "Go internship", a.queries[0].Term)
	assert.Equal(t, DefaultLocation, a.queries[0].Location)
	assert.Equal(t, 15, a.queries[0].Limit)
	assert.Equal(t, 168, a.queries[0].HoursOld)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, *waits)

	// Same title/company/location from both boards collapses to the first.
	require.Len(t, listings, 3)
	assert.Equal(t, "a-Go", listings[0].ID)
	assert.Equal(t, "a-SQL", listings[1].ID)
	assert.Equal(t, "a-Rust", listings[2].ID)
	for _, listing := range listings {
		assert.Equal(t, jobs.SourceExternal, listing.Source)
		assert.NotContains(t, listing.Title, "Senior")
		assert.True(t, strings.HasSuffix(listing.Description, "..."))
	}
	// 1 of 4 skills matched, one title match, internship bonus.
	assert.Equal(t, 4.0, listings[0].Relevance)
}

func TestSearchOmitsFailedTerm(t *testing.T) {
	failing := &fakeBoard{name: "a", fn: func(q jobs.Query) (*jobs.Postings, error) {
		if strings.HasPrefix(q.Term, "SQL") {
			return nil, errors.New("blocked")
		}
		return termPostings("a")(q)
	}}

	s, _ := newTestScraper(t, []jobs.Board{failing}, Config{})

	listings, err := s.Search(context.Background(), "Go, SQL", "Berlin")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "a-Go", listings[0].ID)
	assert.Equal(t, "Berlin", listings[0].Location)
}

func TestSearchToleratesOneFailedBoard(t *testing.T) {
	broken := &fakeBoard{name: "broken", fn: func(jobs.Query) (*jobs.Postings, error) { return nil, errors.New("down") }}
	ok := &fakeBoard{name: "ok", fn: termPostings("ok")}

	s, _ := newTestScraper(t, []jobs.Board{broken, ok}, Config{})

	listings, err := s.Search(context.Background(), "Go", "Remote")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "ok-Go", listings[0].ID)
}

func TestSearchCapsResults(t *testing.T) {
	many := &fakeBoard{name: "many", fn: func(q jobs.Query) (*jobs.Postings, error) {
		postings := &jobs.Postings{}
		for i := 0; i < 20; i++ {
			postings.Items = append(postings.Items, &jobs.Posting{
				ID:      q.Term + string(rune('a'+i)),
				Title:   "Intern " + q.Term + string(rune('a'+i)),
				Company: "Acme",
			})
		}
		return postings, nil
	}}

	s, _ := newTestScraper(t, []jobs.Board{many}, Config{MaxResults: 15, ResultsPerSite: 50})

	listings, err := s.Search(context.Background(), "Go, SQL", "")
	require.NoError(t, err)
	assert.Len(t, listings, 15)
	assert.Equal(t, 15, many.queries[0].Limit)
}

func TestSearchUsesCache(t *testing.T) {
	board := &fakeBoard{name: "a", fn: termPostings("a")}
	cache := &memoryCache{data: map[string][]jobs.Listing{}}

	s, _ := newTestScraper(t, []jobs.Board{board}, Config{}, WithCache(cache))

	first, err := s.Search(context.Background(), "Go", "Remote")
	require.NoError(t, err)
	second, err := s.Search(context.Background(), " go ", "remote")
	require.NoError(t, err)

	assert.Len(t, board.queries, 1, "second search must be served from cache")
	assert.Equal(t, first, second)
}

func TestSearchDoesNotCacheTotalFailure(t *testing.T) {
	var calls int
	board := &fakeBoard{name: "a", fn: func(q jobs.Query) (*jobs.Postings, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("down")
		}
		return termPostings("a")(q)
	}}
	cache := &memoryCache{data: map[string][]jobs.Listing{}}

	s, _ := newTestScraper(t, []jobs.Board{board}, Config{}, WithCache(cache))

	first, err := s.Search(context.Background(), "Go", "Remote")
	require.NoError(t, err)
	assert.Empty(t, first)
	assert.Empty(t, cache.data, "a search where every term failed must not be cached")

	second, err := s.Search(context.Background(), "Go", "Remote")
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "the recovered board must be queried again")
	require.Len(t, second, 1)
	assert.Len(t, cache.data, 1)
}

func TestSearchCachesEmptySuccess(t *testing.T) {
	board := &fakeBoard{name: "a", fn: func(jobs.Query) (*jobs.Postings, error) { return &jobs.Postings{}, nil }}
	cache := &memoryCache{data: map[string][]jobs.Listing{}}

	s, _ := newTestScraper(t, []jobs.Board{board}, Config{}, WithCache(cache))

	_, err := s.Search(context.Background(), "Go", "Remote")
	require.NoError(t, err)
	assert.Len(t, cache.data, 1)
}

func TestSearchPassesSitePacer(t *testing.T) {
	board := &fakeBoard{name: "a", fn: termPostings("a")}

	s, _ := newTestScraper(t, []jobs.Board{board}, Config{SiteRPS: 100})
	_, err := s.Search(context.Background(), "Go, SQL", "")
	require.NoError(t, err)

	require.Len(t, board.queries, 2)
	require.NotNil(t, board.queries[0].Pacer)
	assert.Same(t, board.queries[0].Pacer, board.queries[1].Pacer, "one limiter per site across terms")

	unlimited, _ := newTestScraper(t, []jobs.Board{&fakeBoard{name: "b", fn: termPostings("b")}}, Config{})
	assert.Empty(t, unlimited.limiters)
}

func TestNewDefaults(t *testing.T) {
	s := New(nil, nil, Config{ResultsPerSite: 50})

	assert.Equal(t, 15, s.cfg.MaxResults)
	assert.Equal(t, 3, s.cfg.MaxTerms)
	assert.Equal(t, 168, s.cfg.HoursOld)
	assert.Equal(t, maxResultsPerSite, s.cfg.ResultsPerSite)
}

func TestSearchIgnoresCacheErrors(t *testing.T) {
	board := &fakeBoard{name: "a", fn: termPostings("a")}
	s, _ := newTestScraper(t, []jobs.Board{board}, Config{}, WithCache(&memoryCache{err: errors.New("connection refused")}))

	listings, err := s.Search(context.Background(), "Go", "")
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestSearchCanceled(t *testing.T) {
	board := &fakeBoard{name: "a", fn: termPostings("a")}
	s := New(nil, []jobs.Board{board}, Config{Delay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Search(ctx, "Go, SQL", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchNoBoards(t *testing.T) {
	s, _ := newTestScraper(t, nil, Config{})

	listings, err := s.Search(context.Background(), "", "")
	require.NoError(t, err)
	assert.NotNil(t, listings)
	assert.Empty(t, listings)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, CacheKey("Remote", []string{"Go", "SQL"}), CacheKey(" remote", []string{"go ", "sql"}))
	assert.NotEqual(t, CacheKey("Remote", []string{"Go", "SQL"}), CacheKey("Remote", []string{"SQL", "Go"}))
	assert.True(t, strings.HasPrefix(CacheKey("x", nil), keyPrefix))
}

func TestNewRedisCacheRejectsBadURL(t *testing.T) {
	_, _, err := NewRedisCache("http://not-redis", time.Minute)
	require.Error(t, err)
}
