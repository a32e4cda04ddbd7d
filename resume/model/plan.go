package model

import (
	"errors"
	"fmt"
	"strings"
)

// Plan is the structured content of a tailored resume before rendering.
type Plan struct {
	Summary        string       `json:"summary"`
	Skills         []string     `json:"skills"`
	Experience     []Experience `json:"experience"`
	Education      []string     `json:"education"`
	Certifications []string     `json:"certifications"`
}

// Experience is one role block of a Plan.
type Experience struct {
	Employer string   `json:"employer"`
	Role     string   `json:"role"`
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Bullets  []string `json:"bullets"`
}

// Normalize trims every field and replaces nil slices with empty ones so the
// plan always serializes with arrays.
func (p Plan) Normalize() Plan {
	out := Plan{
		Summary:        strings.TrimSpace(p.Summary),
		Skills:         trimAll(p.Skills),
		Education:      trimAll(p.Education),
		Certifications: trimAll(p.Certifications),
		Experience:     make([]Experience, 0, len(p.Experience)),
	}
	for _, exp := range p.Experience {
		out.Experience = append(out.Experience, Experience{
			Employer: strings.TrimSpace(exp.Employer),
			Role:     strings.TrimSpace(exp.Role),
			Start:    strings.TrimSpace(exp.Start),
			End:      strings.TrimSpace(exp.End),
			Bullets:  trimAll(exp.Bullets),
		})
	}
	return out
}

// Validate rejects plans that carry no content at all and experience blocks
// without an employer or role.
func (p Plan) Validate() error {
	if strings.TrimSpace(p.Summary) == "" && len(p.Skills) == 0 && len(p.Experience) == 0 &&
		len(p.Education) == 0 && len(p.Certifications) == 0 {
		return errors.New("plan is empty")
	}
	for i, exp := range p.Experience {
		if strings.TrimSpace(exp.Employer) == "" && strings.TrimSpace(exp.Role) == "" {
			return fmt.Errorf("experience[%d] needs an employer or role", i)
		}
	}
	return nil
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, strings.TrimSpace(item))
	}
	return out
}
