package model

import "github.com/google/uuid"

// JobPosting is a normalized job opening, usually produced by the search
// engine from a raw provider record. Constructed once via NewJobPosting and
// treated as immutable afterwards.
type JobPosting struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title" validate:"required"`
	Company            string   `json:"company" validate:"required"`
	Location           string   `json:"location" validate:"required"`
	JobType            string   `json:"job_type" validate:"required"`
	SalaryRange        string   `json:"salary_range,omitempty"`
	RequiredSkills     []string `json:"required_skills" validate:"required,min=1,dive,required"`
	ExperienceRequired string   `json:"experience_required" validate:"required"`
	EducationRequired  string   `json:"education_required" validate:"required"`
	Description        string   `json:"description" validate:"required"`
	URL                string   `json:"url,omitempty"`
}

// NewJobPosting validates the posting and returns an immutable copy. A
// missing required field or an empty skills list is rejected with a
// ValidationError.
func NewJobPosting(p JobPosting) (*JobPosting, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	if err := checkStruct("job posting", p); err != nil {
		return nil, err
	}

	p.RequiredSkills = append([]string(nil), p.RequiredSkills...)

	return &p, nil
}
