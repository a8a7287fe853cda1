package match

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/seekmatch/jobmatcher/internal/ai"
	"github.com/seekmatch/jobmatcher/internal/logger"
	"github.com/seekmatch/jobmatcher/internal/model"
)

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// requiredKeys are the fields the model must return, checked in this order
// so the first missing one is named deterministically.
var requiredKeys = []string{
	"compatibility_score",
	"explanation",
	"skill_match_percentage",
	"experience_fit",
	"salary_alignment",
	"recommendations",
}

// Engine scores one (seeker, posting) pair through the external completion
// capability, enforcing the MatchResult contract on the model's output.
type Engine struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewEngine(generator ai.Generator, log *zap.Logger, maxLogLength int) *Engine {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Engine{
		generator: generator,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLength,
	}
}

// ScorePair builds the scoring prompt for the pair, invokes the completion
// capability once and parses the response into a validated MatchResult.
// Out-of-range scores are clamped before construction; a malformed response
// fails with ParseError, a missing field with IncompleteResponseError.
func (e *Engine) ScorePair(ctx context.Context, seeker *model.JobSeeker, posting *model.JobPosting) (*model.MatchResult, error) {
	if seeker == nil {
		return nil, fmt.Errorf("job seeker is required")
	}
	if posting == nil {
		return nil, fmt.Errorf("job posting is required")
	}

	seekerJSON, err := json.MarshalIndent(seeker, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal seeker payload: %w", err)
	}

	postingJSON, err := json.MarshalIndent(posting, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal posting payload: %w", err)
	}

	prompt := buildPrompt(string(seekerJSON), string(postingJSON))

	e.logger.Debug("generate content request",
		zap.String("posting_id", posting.ID),
		zap.String("seeker_id", seeker.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("generate content response",
		zap.String("posting_id", posting.ID),
		zap.String("seeker_id", seeker.ID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, e.maxLogLen)),
	)

	return parseScore(raw, seeker.ID, posting.ID)
}

func buildPrompt(seekerJSON, postingJSON string) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{SEEKER_JSON}}", seekerJSON)
	prompt = strings.ReplaceAll(prompt, "{{POSTING_JSON}}", postingJSON)
	return prompt
}

// parseScore enforces the response contract: valid JSON, all required keys
// present and usable, numeric scores clamped to their bounds. Clamping here
// distinguishes model imprecision (recoverable) from model garbage
// (ParseError / IncompleteResponseError).
func parseScore(raw, seekerID, postingID string) (*model.MatchResult, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, &ParseError{Err: err}
	}

	for _, key := range requiredKeys {
		if _, ok := data[key]; !ok {
			return nil, &IncompleteResponseError{Key: key}
		}
	}

	score := coerceFloat(data["compatibility_score"])
	if math.IsNaN(score) {
		return nil, &IncompleteResponseError{Key: "compatibility_score"}
	}

	skillMatch := coerceFloat(data["skill_match_percentage"])
	if math.IsNaN(skillMatch) {
		return nil, &IncompleteResponseError{Key: "skill_match_percentage"}
	}

	explanation := coerceString(data["explanation"])
	if explanation == "" {
		return nil, &IncompleteResponseError{Key: "explanation"}
	}

	experienceFit := coerceString(data["experience_fit"])
	if experienceFit == "" {
		return nil, &IncompleteResponseError{Key: "experience_fit"}
	}

	salaryAlignment := coerceString(data["salary_alignment"])
	if salaryAlignment == "" {
		return nil, &IncompleteResponseError{Key: "salary_alignment"}
	}

	return model.NewMatchResult(model.MatchResult{
		JobSeekerID:          seekerID,
		JobPostingID:         postingID,
		CompatibilityScore:   clamp(score, 0, 1),
		SkillMatchPercentage: clamp(skillMatch, 0, 100),
		ExperienceFit:        experienceFit,
		SalaryAlignment:      salaryAlignment,
		Explanation:          explanation,
		Recommendations:      coerceStringSlice(data["recommendations"]),
	})
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStringSlice(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		result := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				result = append(result, s)
			}
		}
		return result
	case string:
		if trimmed := strings.TrimSpace(val); trimmed != "" {
			return []string{trimmed}
		}
		return []string{}
	default:
		return []string{}
	}
}
