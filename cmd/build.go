package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/liquidhire/internal/ai"
	"github.com/spigell/liquidhire/internal/ai/claude"
	"github.com/spigell/liquidhire/internal/ai/gemini"
	"github.com/spigell/liquidhire/internal/ai/groq"
	"github.com/spigell/liquidhire/internal/headhunter"
	"github.com/spigell/liquidhire/internal/jobs"
	"github.com/spigell/liquidhire/internal/jobs/linkedin"
	"github.com/spigell/liquidhire/internal/jobs/remotive"
	"github.com/spigell/liquidhire/internal/logger"
	"github.com/spigell/liquidhire/internal/scraper"
	"github.com/spigell/liquidhire/internal/secrets"
	"go.uber.org/zap"
)

const (
	providerGemini    = "gemini"
	providerGroq      = "groq"
	providerAnthropic = "anthropic"
)

// newChain builds the model fallback chain. Candidates whose provider has no
// credential are skipped, so an empty chain is valid and always yields no result.
func newChain(ctx context.Context, cfg *AIConfig, log *zap.Logger) *ai.Chain {
	log = logger.Component(log, "ai")

	keys := map[string]string{}
	resolved := map[string]bool{}
	apiKey := func(provider string, pc *ProviderConfig) string {
		if resolved[provider] {
			return keys[provider]
		}
		resolved[provider] = true

		if pc == nil {
			pc = &ProviderConfig{}
		}
		key, err := secrets.Load(secrets.Source{
			Name:  provider + " api key",
			Value: pc.APIKey,
			File:  pc.APIKeyFile,
		})
		if err != nil {
			level := log.Warn
			if errors.Is(err, secrets.ErrNotConfigured) {
				level = log.Info
			}
			level("provider disabled", zap.String(logger.FieldProvider, provider), zap.Error(err))
			return ""
		}
		keys[provider] = key
		return key
	}

	var providers []ai.Provider
	for _, candidate := range cfg.Chain {
		name := strings.ToLower(strings.TrimSpace(candidate.Provider))
		fields := logger.CommonFields(name, candidate.Model)

		var (
			provider ai.Provider
			err      error
		)
		switch name {
		case providerGemini:
			key := apiKey(name, cfg.Gemini)
			if key == "" {
				continue
			}
			provider, err = gemini.NewGenerator(ctx, key, candidate.Model, logger.WithFields(log, fields...))
		case providerGroq:
			key := apiKey(name, cfg.Groq)
			if key == "" {
				continue
			}
			baseURL := ""
			if cfg.Groq != nil {
				baseURL = cfg.Groq.BaseURL
			}
			provider, err = groq.New(key, baseURL, candidate.Model)
		case providerAnthropic:
			key := apiKey(name, cfg.Anthropic)
			if key == "" {
				continue
			}
			provider, err = claude.New(key, candidate.Model)
		default:
			err = fmt.Errorf("unsupported ai provider: %s", candidate.Provider)
		}

		if err != nil {
			log.Warn("skipping chain candidate", append(fields, zap.Error(err))...)
			continue
		}
		providers = append(providers, provider)
	}

	chain := ai.NewChain(log, providers,
		ai.WithMaxLogLength(cfg.MaxLogLength),
		ai.WithTimeout(cfg.Timeout),
	)

	if chain.Len() == 0 {
		log.Warn("no ai provider configured; generation endpoints will return fallback answers",
			zap.String("hint", "set GEMINI_API_KEY, GROQ_API_KEY or ANTHROPIC_API_KEY"),
		)
	} else {
		log.Info("ai fallback chain", zap.Strings("candidates", chain.Candidates()))
	}

	return chain
}

// newScraper builds the job scraper and returns a cleanup func releasing its
// cache connection.
func newScraper(cfg *JobsConfig, log *zap.Logger) (*scraper.Scraper, func()) {
	log = logger.Component(log, "jobs")

	var boards []jobs.Board
	for _, site := range cfg.Sites {
		switch strings.ToLower(strings.TrimSpace(site)) {
		case linkedin.Name:
			boards = append(boards, linkedin.New(log))
		case headhunter.Name:
			token, err := secrets.LoadOptional(secrets.Source{Name: "headhunter token", File: cfg.Headhunter.TokenFile})
			if err != nil {
				log.Warn("headhunter token unreadable; searching anonymously", zap.Error(err))
			}
			hh := headhunter.New(log, token)
			if cfg.Headhunter.UserAgent != "" {
				hh.UserAgent = cfg.Headhunter.UserAgent
			}
			boards = append(boards, hh)
		case remotive.Name:
			boards = append(boards, remotive.New(log))
		default:
			log.Warn("unknown job site skipped", zap.String(logger.FieldSite, site))
		}
	}

	var opts []scraper.Option
	cleanup := func() {}
	if url := strings.TrimSpace(cfg.Cache.RedisURL); url != "" {
		cache, client, err := scraper.NewRedisCache(url, cfg.Cache.TTL)
		if err != nil {
			log.Warn("job cache disabled", zap.Error(err))
		} else {
			opts = append(opts, scraper.WithCache(cache))
			cleanup = func() {
				if err := client.Close(); err != nil {
					log.Warn("closing redis client", zap.Error(err))
				}
			}
		}
	}

	s := scraper.New(log, boards, scraper.Config{
		MaxResults:       cfg.MaxResults,
		MaxTerms:         cfg.MaxTerms,
		ResultsPerSite:   cfg.ResultsPerSite,
		HoursOld:         cfg.HoursOld,
		Delay:            cfg.Delay,
		SiteRPS:          cfg.SiteRPS,
		ExcludeCompanies: cfg.ExcludeCompanies,
	}, opts...)

	log.Info("job boards", zap.Strings("sites", s.Sites()))
	return s, cleanup
}
