package tailoring

import "errors"

var (
	// ErrNotFound indicates the requested resume or job posting does not exist.
	ErrNotFound = errors.New("resume or job posting not found")

	// ErrFailed indicates a tracked tailoring run ended in failure.
	ErrFailed = errors.New("tailoring failed")
)

// NoInputsReason is recorded on runs skipped for lack of inputs.
const NoInputsReason = "No resumes or job postings available"

// UnknownCompany names the artifact directory of postings without a company.
const UnknownCompany = "Unknown"
