package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/liquidhire/internal/filtering"
	"github.com/spigell/liquidhire/internal/jobs"
	"github.com/spigell/liquidhire/internal/logger"
	"github.com/spigell/liquidhire/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultLocation is searched when the request names none.
const DefaultLocation = "Remote"

const maxResultsPerSite = 20

// Config tunes a Scraper.
type Config struct {
	MaxResults     int
	MaxTerms       int
	ResultsPerSite int
	// HoursOld drops postings older than this. Zero means the 168h default.
	HoursOld int
	// Delay separates consecutive search terms.
	Delay time.Duration
	// SiteRPS bounds requests per second to each board. Zero disables limiting.
	SiteRPS          float64
	ExcludeCompanies []string
}

// DefaultConfig mirrors the documented defaults.
func DefaultConfig() Config {
	return Config{
		MaxResults:     15,
		MaxTerms:       3,
		ResultsPerSite: 15,
		HoursOld:       168,
		Delay:          time.Second,
		SiteRPS:        1,
	}
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithCache stores finished searches in c.
func WithCache(c Cache) Option {
	return func(s *Scraper) {
		s.cache = c
	}
}

// WithFilters replaces the default filter pipeline factory.
func WithFilters(build func() []filtering.Filter) Option {
	return func(s *Scraper) {
		s.filters = build
	}
}

// Scraper searches boards for internships matching a list of skills.
type Scraper struct {
	boards   []jobs.Board
	limiters map[string]*rate.Limiter
	cfg      Config
	filters  func() []filtering.Filter
	cache    Cache
	logger   *zap.Logger
	wait     func(context.Context, time.Duration) error
}

func New(log *zap.Logger, boards []jobs.Board, cfg Config, opts ...Option) *Scraper {
	if log == nil {
		log = zap.NewNop()
	}

	def := DefaultConfig()
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = def.MaxResults
	}
	if cfg.MaxTerms <= 0 {
		cfg.MaxTerms = def.MaxTerms
	}
	if cfg.ResultsPerSite <= 0 {
		cfg.ResultsPerSite = def.ResultsPerSite
	}
	if cfg.HoursOld <= 0 {
		cfg.HoursOld = def.HoursOld
	}
	if cfg.ResultsPerSite > maxResultsPerSite {
		cfg.ResultsPerSite = maxResultsPerSite
	}

	s := &Scraper{
		boards:   boards,
		limiters: make(map[string]*rate.Limiter, len(boards)),
		cfg:      cfg,
		filters:  filtering.Default,
		logger:   log,
		wait:     utils.WaitFor,
	}
	for _, board := range boards {
		if cfg.SiteRPS > 0 {
			s.limiters[board.Name()] = rate.NewLimiter(rate.Limit(cfg.SiteRPS), 1)
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sites returns the configured board names.
func (s *Scraper) Sites() []string {
	names := make([]string, 0, len(s.boards))
	for _, board := range s.boards {
		names = append(names, board.Name())
	}
	return names
}

// Search runs every search term derived from query against every board and
// returns cleaned, deduplicated listings. Failed boards and terms are
// skipped; an error is returned only when ctx is done.
func (s *Scraper) Search(ctx context.Context, query, location string) ([]jobs.Listing, error) {
	skills := jobs.ParseSkills(query)
	if strings.TrimSpace(location) == "" {
		location = DefaultLocation
	}

	key := CacheKey(location, skills)
	if s.cache != nil {
		listings, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("job cache read failed", zap.Error(err))
		case ok:
			s.logger.Debug("job cache hit", zap.Int("jobs", len(listings)))
			return listings, nil
		}
	}

	s.logger.Info("scraping internships", zap.Strings("skills", skills), zap.String("location", location))

	all := &jobs.Postings{}
	succeeded := 0
	for i, term := range jobs.SearchTerms(skills, s.cfg.MaxTerms) {
		if i > 0 {
			if err := s.wait(ctx, s.cfg.Delay); err != nil {
				return nil, fmt.Errorf("search interrupted: %w", err)
			}
		}

		found, err := s.searchTerm(ctx, term, location)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("search interrupted: %w", ctx.Err())
		}
		if err != nil {
			s.logger.Error("scraping term failed", append(logger.ScrapeFields("", term), zap.Error(err))...)
			continue
		}

		s.logger.Info("found internships", append(logger.ScrapeFields("", term), zap.Int("count", found.Len()))...)
		succeeded++
		all.Append(found)
	}

	for _, posting := range all.Items {
		jobs.Clean(posting)
	}
	jobs.Dedup(all)
	if all.Len() > s.cfg.MaxResults {
		all.Items = all.Items[:s.cfg.MaxResults]
	}

	listings := make([]jobs.Listing, 0, all.Len())
	for _, posting := range all.Items {
		listings = append(listings, jobs.ToListing(posting, skills))
	}

	s.logger.Info("total unique internships found", zap.Int("count", len(listings)))

	// Nothing is cached when every term failed.
	if s.cache != nil && succeeded > 0 {
		if err := s.cache.Set(ctx, key, listings); err != nil {
			s.logger.Warn("job cache write failed", zap.Error(err))
		}
	}

	return listings, nil
}

// searchTerm queries all boards concurrently for one term and filters the
// merged postings. Results keep board order. It fails only when every board
// failed.
func (s *Scraper) searchTerm(ctx context.Context, term, location string) (*jobs.Postings, error) {
	results := make([]*jobs.Postings, len(s.boards))
	errs := make([]error, len(s.boards))

	q := jobs.Query{
		Term:     term,
		Location: location,
		Limit:    min(s.cfg.ResultsPerSite, s.cfg.MaxResults),
		HoursOld: s.cfg.HoursOld,
	}

	var g errgroup.Group
	for i, board := range s.boards {
		bq := q
		if limiter := s.limiters[board.Name()]; limiter != nil {
			bq.Pacer = limiter
		}

		g.Go(func() error {
			log := s.logger.With(logger.ScrapeFields(board.Name(), term)...)
			postings, err := board.Search(ctx, bq)
			if err != nil {
				log.Warn("board search failed", zap.Error(err))
				errs[i] = err
				return nil
			}

			log.Debug("board search finished", zap.Int("count", postings.Len()))
			results[i] = postings
			return nil
		})
	}
	_ = g.Wait()

	merged := &jobs.Postings{}
	var lastErr error
	succeeded := 0
	for i := range s.boards {
		if errs[i] != nil {
			lastErr = errs[i]
			continue
		}
		succeeded++
		merged.Append(results[i])
	}
	if len(s.boards) > 0 && succeeded == 0 {
		return nil, fmt.Errorf("all boards failed: %w", lastErr)
	}

	filterCfg := &filtering.Config{
		ExcludeCompanies: s.cfg.ExcludeCompanies,
		HoursOld:         s.cfg.HoursOld,
	}
	filtered, err := filtering.Run(ctx, filterCfg, filtering.Deps{Logger: s.logger.With(logger.ScrapeFields("", term)...)}, s.filters(), merged)
	if err != nil {
		return nil, fmt.Errorf("filter postings: %w", err)
	}
	return filtered, nil
}
