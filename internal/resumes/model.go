package resumes

import "time"

// Resume is an uploaded base document with its extracted text.
type Resume struct {
	ID        string
	FilePath  string
	Format    string
	Text      string
	TextHash  string
	CreatedAt time.Time
}
