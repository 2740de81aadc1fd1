package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/applyflow/internal/external"
	"github.com/jonathan/applyflow/internal/schemas"
	"github.com/jonathan/applyflow/internal/types"
)

// documentSchemaFile is the schema the model's output must satisfy
const documentSchemaFile = "schemas/generated_document.schema.json"

// fallbackDocumentSchema is used when the schema file cannot be resolved
// from the working directory
const fallbackDocumentSchema = `{
	"type": "object",
	"required": ["content"],
	"properties": {"content": {"type": "string", "minLength": 1}}
}`

// documentPayload is the JSON shape the prompts ask the model for
type documentPayload struct {
	Content string `json:"content"`
}

// Service generates application documents from candidate and job graphs.
// It implements the workflow engine's Generator contract.
type Service struct {
	client Client
	schema string
	logger *zap.Logger
}

// NewService creates a generation service backed by the given client
func NewService(client Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	schema := fallbackDocumentSchema
	if path := schemas.ResolveSchemaPath(documentSchemaFile); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			schema = string(data)
		}
	}

	return &Service{
		client: client,
		schema: schema,
		logger: logger,
	}
}

// GenerateResume produces a tailored resume document
func (s *Service) GenerateResume(ctx context.Context, candidate *types.CandidateGraph, job *types.JobGraph) (*types.Document, error) {
	prompt := buildResumePrompt(candidate, job)
	return s.generate(ctx, types.DocumentResume, prompt, TierAdvanced)
}

// GenerateCoverLetter produces a cover letter document
func (s *Service) GenerateCoverLetter(ctx context.Context, candidate *types.CandidateGraph, job *types.JobGraph) (*types.Document, error) {
	prompt := buildCoverLetterPrompt(candidate, job)
	return s.generate(ctx, types.DocumentCoverLetter, prompt, TierStandard)
}

func (s *Service) generate(ctx context.Context, kind, prompt string, tier ModelTier) (*types.Document, error) {
	started := time.Now()
	raw, err := s.client.GenerateJSON(ctx, prompt, tier)
	if err != nil {
		return nil, external.Transient("generation", kind, err)
	}

	// Schema violations are transient: a retried call can return a
	// conforming response.
	if err := schemas.ValidateString(s.schema, raw); err != nil {
		return nil, external.Transient("generation", kind,
			fmt.Errorf("model output failed validation: %w", err))
	}

	var payload documentPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, external.Transient("generation", kind,
			fmt.Errorf("failed to unmarshal model output: %w", err))
	}

	s.logger.Debug("document generated",
		zap.String("kind", kind),
		zap.Int("length", len(payload.Content)),
		zap.Duration("elapsed", time.Since(started)),
	)

	return &types.Document{
		Kind:        kind,
		Content:     payload.Content,
		Format:      "markdown",
		GeneratedAt: time.Now().UTC(),
	}, nil
}
