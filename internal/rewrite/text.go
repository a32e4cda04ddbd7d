package rewrite

import (
	"fmt"
	"strings"

	"fitresume/resume/model"
)

// RenderText renders a plan as plain-text sections separated by blank lines.
func RenderText(plan model.Plan) string {
	experiences := make([]string, 0, len(plan.Experience))
	for _, exp := range plan.Experience {
		block := fmt.Sprintf("%s — %s (%s - %s)", exp.Employer, exp.Role, exp.Start, exp.End)
		if len(exp.Bullets) > 0 {
			block += "\n  - " + strings.Join(exp.Bullets, "\n  - ")
		}
		experiences = append(experiences, block)
	}

	sections := []string{
		"Summary\n" + plan.Summary,
		"Skills\n" + strings.Join(plan.Skills, ", "),
		"Experience\n" + strings.Join(experiences, "\n"),
		"Education\n" + strings.Join(plan.Education, "\n"),
		"Certifications\n" + strings.Join(plan.Certifications, "\n"),
	}
	for i, section := range sections {
		sections[i] = strings.TrimSpace(section)
	}
	return strings.Join(sections, "\n\n")
}
