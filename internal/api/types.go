package api

import "writegeist/internal/projectdoc"

// EchoRequest is the body of POST /echo.
type EchoRequest struct {
	Text string `json:"text"`
}

// EchoResponse mirrors the request text back.
type EchoResponse struct {
	Echo string `json:"echo"`
}

// IngestChapterRequest is the body of POST /ingest_chapter.
type IngestChapterRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// SectionResponse carries one section's markdown; empty when the section is
// absent.
type SectionResponse struct {
	Markdown string `json:"markdown"`
}

// SectionSummary names a section and its content line count.
type SectionSummary struct {
	Name  string `json:"name"`
	Lines int    `json:"lines"`
}

// SectionsResponse lists the project's sections in document order.
type SectionsResponse struct {
	Sections []SectionSummary `json:"sections"`
}

// ProposalRequest is the body of POST /n8n/proposal: a markdown block to merge
// into a section. H2 is accepted for webhook compatibility but unused.
type ProposalRequest struct {
	Section string `json:"section"`
	H2      string `json:"h2,omitempty"`
	Replace string `json:"replace"`
}

// MergeResult describes the merge decision made for a proposal.
type MergeResult struct {
	Outcome    string  `json:"outcome"`
	Rule       string  `json:"rule,omitempty"`
	Incoming   string  `json:"incoming,omitempty"`
	Match      string  `json:"match,omitempty"`
	Similarity float64 `json:"similarity,omitempty"`
}

// FromMergeResult converts an engine result to its wire form.
func FromMergeResult(res projectdoc.Result) MergeResult {
	return MergeResult{
		Outcome:    string(res.Outcome),
		Rule:       string(res.Rule),
		Incoming:   res.Incoming,
		Match:      res.Match,
		Similarity: res.Similarity,
	}
}

// ProposalResponse is returned with 202 for every accepted proposal request,
// including rejected merges.
type ProposalResponse struct {
	Status  string      `json:"status"`
	Section string      `json:"section"`
	Result  MergeResult `json:"result"`
}

// UploadRequest is the body of POST /upload-project.
type UploadRequest struct {
	Markdown string `json:"markdown"`
}

// UploadResponse confirms a project replacement.
type UploadResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
	ContentLength int    `json:"content_length"`
}

// LastUpdatedResponse carries the sync marker as a string; "0" means never
// updated.
type LastUpdatedResponse struct {
	LastUpdated string `json:"last_updated"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	OK bool `json:"ok"`
}

// DaemonStatus is returned by GET /api/status.
type DaemonStatus struct {
	Running         bool   `json:"running"`
	PID             int    `json:"pid"`
	DatabasePath    string `json:"database_path"`
	LockFilePath    string `json:"lock_file_path"`
	LastUpdated     string `json:"last_updated"`
	IngestAvailable bool   `json:"ingest_available"`
	Model           string `json:"model,omitempty"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}
