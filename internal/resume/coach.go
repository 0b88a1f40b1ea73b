package resume

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/spigell/liquidhire/internal/ai"
	"github.com/spigell/liquidhire/internal/utils"
	"go.uber.org/zap"
)

const (
	// MinRoastLength is the shortest extracted text worth roasting.
	MinRoastLength = 50

	maxResumeRunes         = 15000
	maxJobDescriptionRunes = 10000

	roastPersona = "You are 'Liquid', a ruthless, sarcastic, elite tech recruiter from Silicon Valley. Roast this resume. Be mean but accurate."
	tailorSystem = "You are a professional resume writer. Output valid JSON only."

	// RoastUnavailable is the roast summary when no model answered.
	RoastUnavailable = "Unable to roast this resume right now."
)

var (
	//go:embed prompts/roast.md
	roastTemplate string

	//go:embed prompts/tailor.md
	tailorTemplate string
)

// Roast is the résumé roast response body.
type Roast struct {
	Summary    string   `json:"roast_summary"`
	BurnScore  float64  `json:"burn_score"`
	WeakPoints []string `json:"weak_points"`
}

// ExperienceBullets are rewritten bullets for one position.
type ExperienceBullets struct {
	Company string   `json:"company"`
	Role    string   `json:"role"`
	Bullets []string `json:"bullets"`
}

// Tailored is the résumé tailoring response body.
type Tailored struct {
	ProfessionalSummary string              `json:"professional_summary"`
	ExperienceBullets   []ExperienceBullets `json:"experience_bullets"`
	SkillsToHighlight   []string            `json:"skills_to_highlight"`
	CoverLetterSnippet  string              `json:"cover_letter_snippet"`
}

// TailorRequest is the résumé tailoring request body.
type TailorRequest struct {
	JobDescription string `json:"job_description" validate:"required,max=100000"`
	ResumeText     string `json:"resume_text" validate:"required,max=100000"`
}

// Coach runs the résumé roast and tailoring generations.
type Coach struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

// NewCoach creates a Coach on top of a generator.
func NewCoach(generator ai.Generator, logger *zap.Logger, maxLogLength int) *Coach {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = 200
	}
	return &Coach{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

// Roast generates a roast of the résumé text. Failures yield a neutral roast.
func (c *Coach) Roast(ctx context.Context, resumeText string) Roast {
	fallback := Roast{Summary: RoastUnavailable, WeakPoints: []string{}}

	prompt := strings.ReplaceAll(roastTemplate, "{{RESUME_TEXT}}", utils.TruncateRunes(resumeText, maxResumeRunes, ""))
	raw, ok := c.generator.Generate(ctx, ai.Conversation{
		System:   roastPersona,
		Messages: []ai.Message{{Role: ai.RoleUser, Text: prompt}},
	}, ai.Options{JSON: true})
	if !ok {
		return fallback
	}

	var roast Roast
	if err := decode(raw, &roast); err != nil {
		c.logger.Warn("roast response is not valid JSON",
			zap.Error(err),
			zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)),
		)
		return fallback
	}

	if math.IsNaN(roast.BurnScore) || roast.BurnScore < 0 {
		roast.BurnScore = 0
	}
	roast.BurnScore = math.Min(roast.BurnScore, 100)
	if roast.WeakPoints == nil {
		roast.WeakPoints = []string{}
	}
	return roast
}

// Tailor rewrites the résumé for a job description. Failures yield empty
// sections.
func (c *Coach) Tailor(ctx context.Context, req TailorRequest) Tailored {
	prompt := strings.ReplaceAll(tailorTemplate, "{{JOB_DESCRIPTION}}", utils.TruncateRunes(req.JobDescription, maxJobDescriptionRunes, ""))
	prompt = strings.ReplaceAll(prompt, "{{RESUME_TEXT}}", utils.TruncateRunes(req.ResumeText, maxResumeRunes, ""))

	var tailored Tailored
	raw, ok := c.generator.Generate(ctx, ai.Conversation{
		System:   tailorSystem,
		Messages: []ai.Message{{Role: ai.RoleUser, Text: prompt}},
	}, ai.Options{JSON: true})
	if ok {
		if err := decode(raw, &tailored); err != nil {
			c.logger.Warn("tailor response is not valid JSON",
				zap.Error(err),
				zap.String("response_preview", utils.TruncateForLog(raw, c.maxLogLen)),
			)
			tailored = Tailored{}
		}
	}

	if tailored.ExperienceBullets == nil {
		tailored.ExperienceBullets = []ExperienceBullets{}
	}
	for i := range tailored.ExperienceBullets {
		if tailored.ExperienceBullets[i].Bullets == nil {
			tailored.ExperienceBullets[i].Bullets = []string{}
		}
	}
	if tailored.SkillsToHighlight == nil {
		tailored.SkillsToHighlight = []string{}
	}
	return tailored
}

func decode(raw string, target any) error {
	if err := json.Unmarshal([]byte(ai.StripFences(raw)), target); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}
