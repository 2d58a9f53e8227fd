package document

import "time"

// Status is the lifecycle stage of a document's background parsing
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Record is the stored metadata of one uploaded document
type Record struct {
	ID               string          `json:"id"`
	Filename         string          `json:"filename"`          // Stored filename (id + extension)
	OriginalFilename string          `json:"original_filename"` // Name the file was uploaded with
	FilePath         string          `json:"file_path"`
	FileSize         int64           `json:"file_size"`
	ContentType      string          `json:"content_type"`
	UploadTime       time.Time       `json:"upload_time"`
	Status           Status          `json:"parsing_status"`
	Parsed           *ParsedDocument `json:"parsed_data,omitempty"`   // Present only when completed
	ErrorMessage     string          `json:"error_message,omitempty"` // Present only when failed
}

// IsParsed reports whether the record completed with a parsed document attached.
func (r *Record) IsParsed() bool {
	return r.Status == StatusCompleted && r.Parsed != nil
}

// IsTerminal reports whether the record reached completed or failed.
func (r *Record) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// MarkProcessing moves the record into processing and clears any outcome
// left over from an earlier attempt.
func (r *Record) MarkProcessing() {
	r.Status = StatusProcessing
	r.Parsed = nil
	r.ErrorMessage = ""
}

// MarkCompleted attaches the parsed document and clears any error.
func (r *Record) MarkCompleted(doc *ParsedDocument) {
	r.Status = StatusCompleted
	r.Parsed = doc
	r.ErrorMessage = ""
}

// MarkFailed stores the failure message and drops any parsed document.
// An empty message is replaced so a failed record always explains itself.
func (r *Record) MarkFailed(message string) {
	if message == "" {
		message = "document parsing failed"
	}
	r.Status = StatusFailed
	r.Parsed = nil
	r.ErrorMessage = message
}
