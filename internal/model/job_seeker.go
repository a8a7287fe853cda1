package model

import "github.com/google/uuid"

// JobSeeker is a job seeker's profile. It is constructed once via
// NewJobSeeker and treated as immutable afterwards.
type JobSeeker struct {
	ID                   string   `json:"id"`
	Skills               []string `json:"skills" validate:"required,min=1,dive,required"`
	ExperienceYears      int      `json:"experience_years" validate:"min=0"`
	EducationLevel       string   `json:"education_level" validate:"required"`
	PreferredSalaryRange string   `json:"preferred_salary_range,omitempty"`
	PreferredLocation    string   `json:"preferred_location,omitempty"`
	PreferredJobTypes    []string `json:"preferred_job_types"`
	CareerGoals          string   `json:"career_goals,omitempty"`
}

// NewJobSeeker validates the provided profile and returns an immutable copy
// with defaults applied. An empty skills list or negative experience is
// rejected with a ValidationError.
func NewJobSeeker(s JobSeeker) (*JobSeeker, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	if len(s.PreferredJobTypes) == 0 {
		s.PreferredJobTypes = []string{"Full-time"}
	}

	if err := checkStruct("job seeker", s); err != nil {
		return nil, err
	}

	s.Skills = append([]string(nil), s.Skills...)
	s.PreferredJobTypes = append([]string(nil), s.PreferredJobTypes...)

	return &s, nil
}
