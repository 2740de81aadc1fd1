package types

import "time"

// Document kinds produced by the generation stages
const (
	DocumentResume      = "resume"
	DocumentCoverLetter = "cover_letter"
)

// Document is a generated application document. The engine treats content as
// opaque text produced by the generation collaborator.
type Document struct {
	Kind        string    `json:"kind"`
	Content     string    `json:"content"`
	Format      string    `json:"format,omitempty"` // markdown, plain
	Model       string    `json:"model,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}
