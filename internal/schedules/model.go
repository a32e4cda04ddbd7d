package schedules

import "time"

// Criteria narrows which resume and posting a scheduled run picks.
// Empty fields mean "newest".
type Criteria struct {
	ResumeID     string `json:"resume_id,omitempty"`
	JobPostingID string `json:"job_posting_id,omitempty"`
	Company      string `json:"company,omitempty"`
}

// Empty reports whether no field is set.
func (c *Criteria) Empty() bool {
	return c == nil || (c.ResumeID == "" && c.JobPostingID == "" && c.Company == "")
}

// Schedule is a persisted recurring trigger definition.
type Schedule struct {
	ID        string
	CronExpr  string
	IsEnabled bool
	Criteria  *Criteria
	CreatedAt time.Time
}
