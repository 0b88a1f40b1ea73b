package server

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/spigell/liquidhire/internal/interview"
	"github.com/spigell/liquidhire/internal/jobs"
	"github.com/spigell/liquidhire/internal/resume"
	"github.com/spigell/liquidhire/internal/scraper"
	"go.uber.org/zap"
)

const uploadField = "file"

type textResponse struct {
	Text string `json:"text"`
}

type jobsRequest struct {
	Query    string `json:"query" validate:"max=1000"`
	Location string `json:"location" validate:"max=200"`
}

type jobsResponse struct {
	Jobs  []jobs.Listing `json:"jobs"`
	Error string         `json:"error,omitempty"`
}

type roastRequest struct {
	FileBase64 string `json:"fileBase64"`
}

// bind decodes and validates a JSON body, replying 400 on failure. ok is
// false when a reply was already written.
func (s *Server) bind(c echo.Context, target any) (bool, error) {
	if err := c.Bind(target); err != nil {
		return false, s.badRequest(c, errInvalidRequest, "Invalid request body: "+bindMessage(err))
	}
	if err := c.Validate(target); err != nil {
		return false, s.badRequest(c, errValidationFailed, "Request validation failed: "+err.Error())
	}
	return true, nil
}

func bindMessage(err error) string {
	if he, ok := err.(*echo.HTTPError); ok {
		return fmt.Sprint(he.Message)
	}
	return err.Error()
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) chat(c echo.Context) error {
	var state interview.State
	if ok, err := s.bind(c, &state); !ok {
		return err
	}

	reply := s.deps.Interview.Reply(c.Request().Context(), state)
	return c.JSON(http.StatusOK, reply)
}

func (s *Server) endInterview(c echo.Context) error {
	var req interview.EndRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	report := s.deps.Interview.Score(c.Request().Context(), req)
	return c.JSON(http.StatusOK, report)
}

// parseResume never fails on content: unsupported or unreadable uploads
// yield empty text.
func (s *Server) parseResume(c echo.Context) error {
	log := s.requestLogger(c)

	header, err := c.FormFile(uploadField)
	if err != nil {
		return s.badRequest(c, errInvalidRequest, "Multipart field \"file\" is required")
	}

	contentType := header.Header.Get(echo.HeaderContentType)
	if !resume.Accepts(contentType) {
		log.Info("unsupported resume content type", zap.String("content_type", contentType))
		return c.JSON(http.StatusOK, textResponse{})
	}

	file, err := header.Open()
	if err != nil {
		log.Warn("open uploaded resume", zap.Error(err))
		return c.JSON(http.StatusOK, textResponse{})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Warn("read uploaded resume", zap.Error(err))
		return c.JSON(http.StatusOK, textResponse{})
	}

	text, err := resume.ExtractText(data)
	if err != nil {
		log.Warn("extract resume text", zap.String("filename", header.Filename), zap.Error(err))
		return c.JSON(http.StatusOK, textResponse{})
	}

	return c.JSON(http.StatusOK, textResponse{Text: text})
}

func (s *Server) searchJobs(c echo.Context) error {
	var req jobsRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}
	if strings.TrimSpace(req.Location) == "" {
		req.Location = scraper.DefaultLocation
	}

	listings, err := s.deps.Jobs.Search(c.Request().Context(), req.Query, req.Location)
	if err != nil {
		s.requestLogger(c).Error("job scraping failed", zap.Error(err))
		return c.JSON(http.StatusOK, jobsResponse{Jobs: []jobs.Listing{}, Error: err.Error()})
	}
	if listings == nil {
		listings = []jobs.Listing{}
	}

	return c.JSON(http.StatusOK, jobsResponse{Jobs: listings})
}

func (s *Server) roast(c echo.Context) error {
	var req roastRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	encoded := strings.TrimSpace(req.FileBase64)
	// Data URLs carry a "data:application/pdf;base64," prefix.
	if strings.HasPrefix(encoded, "data:") {
		if _, rest, found := strings.Cut(encoded, ","); found {
			encoded = rest
		}
	}
	if encoded == "" {
		return s.badRequest(c, errInvalidRequest, "No file data provided")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return s.badRequest(c, errInvalidRequest, "fileBase64 is not valid base64")
	}

	text, err := resume.ExtractText(data)
	if err != nil {
		return s.fail(c, http.StatusInternalServerError, errUnreadableFile, "Failed to parse PDF: "+err.Error())
	}

	if n := utf8.RuneCountInString(text); n < resume.MinRoastLength {
		return s.badRequest(c, errUnreadableFile, fmt.Sprintf("PDF is empty or not text-readable. Length: %d", n))
	}

	roast := s.deps.Coach.Roast(c.Request().Context(), text)
	return c.JSON(http.StatusOK, roast)
}

func (s *Server) tailor(c echo.Context) error {
	var req resume.TailorRequest
	if ok, err := s.bind(c, &req); !ok {
		return err
	}

	tailored := s.deps.Coach.Tailor(c.Request().Context(), req)
	return c.JSON(http.StatusOK, tailored)
}
