package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/spigell/liquidhire/internal/interview"
	"github.com/spigell/liquidhire/internal/jobs"
	"github.com/spigell/liquidhire/internal/resume"
	"go.uber.org/zap"
)

const defaultBodyLimit = "10M"

// Interviewer runs chat turns and final scoring.
type Interviewer interface {
	Reply(ctx context.Context, state interview.State) interview.ChatReply
	Score(ctx context.Context, req interview.EndRequest) interview.ScoreReport
}

// ResumeCoach roasts and tailors résumés.
type ResumeCoach interface {
	Roast(ctx context.Context, resumeText string) resume.Roast
	Tailor(ctx context.Context, req resume.TailorRequest) resume.Tailored
}

// JobSearcher finds internship listings for a skills query.
type JobSearcher interface {
	Search(ctx context.Context, query, location string) ([]jobs.Listing, error)
}

// Deps are the services behind the HTTP handlers.
type Deps struct {
	Interview Interviewer
	Coach     ResumeCoach
	Jobs      JobSearcher
}

// Config tunes the HTTP layer.
type Config struct {
	// BodyLimit uses echo's size notation, for example "10M".
	BodyLimit string
}

// Server is the HTTP surface of the backend.
type Server struct {
	echo   *echo.Echo
	logger *zap.Logger
	deps   Deps
}

func New(logger *zap.Logger, cfg Config, deps Deps) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BodyLimit == "" {
		cfg.BodyLimit = defaultBodyLimit
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}

	s := &Server{echo: e, logger: logger, deps: deps}
	s.middleware(cfg)
	s.routes()

	return s
}

func (s *Server) routes() {
	api := s.echo.Group("/api")
	api.GET("/health", s.health)
	api.POST("/chat", s.chat)
	api.POST("/end-interview", s.endInterview)
	api.POST("/parse-resume", s.parseResume)
	api.POST("/jobs", s.searchJobs)
	api.POST("/roast", s.roast)
	api.POST("/tailor", s.tailor)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i any) error {
	return v.validate.Struct(i)
}
