package jobpostings

import "time"

// JobPosting is a target posting a resume can be tailored to.
type JobPosting struct {
	ID          string
	Title       string
	CompanyName string
	Location    string
	URL         string
	RawText     string
	ExternalID  string
	URLHash     string
	CollectedAt time.Time
}
