package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/seekmatch/jobmatcher/internal/logger"
	"github.com/seekmatch/jobmatcher/internal/model"
)

// Engine turns a job seeker's profile into a search query and normalizes
// the provider's raw records into validated job postings.
type Engine struct {
	provider Provider
	logger   *zap.Logger
}

func NewEngine(provider Provider, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		provider: provider,
		logger:   logger,
	}
}

// FindPostings searches for postings matching the seeker's profile. Records
// missing a required field are skipped, not fatal; the skip count is
// returned alongside the postings. Provider ordering is preserved. A
// provider failure surfaces as an UnavailableError, never as an empty list.
func (e *Engine) FindPostings(ctx context.Context, seeker *model.JobSeeker) (*Postings, int, error) {
	if seeker == nil || len(seeker.Skills) == 0 {
		return nil, 0, &model.ValidationError{Model: "job seeker", Field: "skills", Msg: "at least one skill is required to search"}
	}

	query := BuildQuery(seeker)
	e.logger.Info("searching job postings",
		zap.String(logger.FieldProvider, e.provider.Name()),
		zap.String("query", query),
	)

	records, err := e.provider.Search(ctx, query)
	if err != nil {
		var unavailable *UnavailableError
		if !errors.As(err, &unavailable) {
			err = &UnavailableError{Provider: e.provider.Name(), Err: err}
		}
		return nil, 0, err
	}

	postings := &Postings{}
	skipped := 0

	for _, record := range records {
		posting, err := e.normalize(record, seeker)
		if err != nil {
			skipped++
			e.logger.Warn("skipping malformed search record",
				zap.String("title", stringValue(record["title"])),
				zap.Error(err),
			)
			continue
		}
		postings.Items = append(postings.Items, posting)
	}

	e.logger.Info("search completed",
		zap.Int("found", postings.Len()),
		zap.Int("skipped", skipped),
	)

	return postings, skipped, nil
}

// BuildQuery assembles a deterministic search query from the seeker's
// skills, preferred location and preferred job types.
func BuildQuery(seeker *model.JobSeeker) string {
	parts := []string{strings.Join(seeker.Skills, " "), "jobs"}

	if location := strings.TrimSpace(seeker.PreferredLocation); location != "" {
		parts = append(parts, location)
	}

	if len(seeker.PreferredJobTypes) > 0 {
		parts = append(parts, strings.Join(seeker.PreferredJobTypes, " "))
	}

	return strings.Join(parts, " ")
}

// rawRecord is the decode target for one untyped provider record. A record
// carries at least title, company and free-text content; everything else is
// optional and defaulted during normalization.
type rawRecord struct {
	Title              string   `mapstructure:"title"`
	Company            string   `mapstructure:"company"`
	Location           string   `mapstructure:"location"`
	JobType            string   `mapstructure:"job_type"`
	SalaryRange        string   `mapstructure:"salary_range"`
	RequiredSkills     []string `mapstructure:"required_skills"`
	ExperienceRequired string   `mapstructure:"experience_required"`
	EducationRequired  string   `mapstructure:"education_required"`
	Description        string   `mapstructure:"description"`
	Content            string   `mapstructure:"content"`
	URL                string   `mapstructure:"url"`
}

func (e *Engine) normalize(record Record, seeker *model.JobSeeker) (*model.JobPosting, error) {
	var raw rawRecord

	cfg := &mapstructure.DecoderConfig{
		Result:           &raw,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("build record decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(record)); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	description := strings.TrimSpace(raw.Description)
	if description == "" {
		description = strings.TrimSpace(raw.Content)
	}

	skills := raw.RequiredSkills
	if len(skills) == 0 {
		skills = matchSkills(seeker.Skills, description)
	}

	return model.NewJobPosting(model.JobPosting{
		Title:              strings.TrimSpace(raw.Title),
		Company:            strings.TrimSpace(raw.Company),
		Location:           defaultString(raw.Location, "Not specified"),
		JobType:            defaultString(raw.JobType, firstOrDefault(seeker.PreferredJobTypes, "Full-time")),
		SalaryRange:        strings.TrimSpace(raw.SalaryRange),
		RequiredSkills:     skills,
		ExperienceRequired: defaultString(raw.ExperienceRequired, "Not specified"),
		EducationRequired:  defaultString(raw.EducationRequired, "Not specified"),
		Description:        description,
		URL:                strings.TrimSpace(raw.URL),
	})
}

// matchSkills returns the seeker skills mentioned in the posting text, in
// the seeker's order. Providers rarely return an explicit skill list, so
// the overlap with the seeker's skills stands in for it.
func matchSkills(skills []string, text string) []string {
	lower := strings.ToLower(text)

	var matched []string
	for _, skill := range skills {
		if skill == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(skill)) {
			matched = append(matched, skill)
		}
	}

	return matched
}

func defaultString(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func firstOrDefault(values []string, fallback string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
