package aitools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vietscribe/vietscribe/internal/pkg/metering"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
)

// Completer abstracts the LLM call so the service is testable without a
// network. aiclient.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Service exposes the AI writing features. Every operation routes through the
// metering invoker; nothing here checks quotas or records usage directly.
type Service struct {
	ai     Completer
	invoke *metering.Invoker
}

// NewService creates the AI tools service.
func NewService(ai Completer, invoker *metering.Invoker) *Service {
	return &Service{ai: ai, invoke: invoker}
}

// Outline is a generated document skeleton.
type Outline struct {
	Title    string           `json:"title"`
	Sections []OutlineSection `json:"sections"`
}

type OutlineSection struct {
	Heading     string   `json:"heading"`
	Description string   `json:"description"`
	Subsections []string `json:"subsections,omitempty"`
}

// OutlineRequest describes the document to outline.
type OutlineRequest struct {
	Topic         string `json:"topic" validate:"required,min=3,max=500"`
	AcademicLevel string `json:"academic_level"`
	Language      string `json:"language"`
	SectionCount  int    `json:"section_count"`
}

const outlineSystemPrompt = `You are an academic writing assistant for Vietnamese students.
Generate a structured outline for the requested topic. Respond with JSON only:
{"title": "...", "sections": [{"heading": "...", "description": "...", "subsections": ["..."]}]}`

// GenerateOutline produces an outline for a topic, charged against the
// outline quota.
func (s *Service) GenerateOutline(ctx context.Context, userID uint, req OutlineRequest) (*Outline, error) {
	if req.Language == "" {
		req.Language = "vi"
	}
	if req.SectionCount <= 0 {
		req.SectionCount = 5
	}
	prompt := fmt.Sprintf("Topic: %s\nAcademic level: %s\nLanguage: %s\nNumber of main sections: %d",
		req.Topic, req.AcademicLevel, req.Language, req.SectionCount)

	var outline Outline
	err := s.invoke.Invoke(ctx, userID, plans.FeatureOutline, func(ctx context.Context) error {
		raw, err := s.ai.Complete(ctx, outlineSystemPrompt, prompt)
		if err != nil {
			return err
		}
		return decodeJSON(raw, &outline)
	})
	if err != nil {
		return nil, err
	}
	return &outline, nil
}

// AssistRequest asks for help continuing or improving a passage.
type AssistRequest struct {
	Instruction string `json:"instruction" validate:"required,min=3,max=2000"`
	Text        string `json:"text" validate:"max=20000"`
	Language    string `json:"language"`
}

const assistSystemPrompt = `You are an academic writing assistant for Vietnamese students.
Follow the user's instruction on the given text. Keep an academic register and
answer in the requested language. Respond with the revised or generated text only.`

// Assist runs a free-form writing instruction, charged against the AI
// assistant quota.
func (s *Service) Assist(ctx context.Context, userID uint, req AssistRequest) (string, error) {
	if req.Language == "" {
		req.Language = "vi"
	}
	prompt := fmt.Sprintf("Instruction: %s\nLanguage: %s\n---\n%s", req.Instruction, req.Language, req.Text)

	var result string
	err := s.invoke.Invoke(ctx, userID, plans.FeatureAIAssistant, func(ctx context.Context) error {
		out, err := s.ai.Complete(ctx, assistSystemPrompt, prompt)
		if err != nil {
			return err
		}
		result = strings.TrimSpace(out)
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

// GrammarIssue is one problem found in a text.
type GrammarIssue struct {
	Excerpt    string `json:"excerpt"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
}

// GrammarReport is the result of a grammar check.
type GrammarReport struct {
	Issues        []GrammarIssue `json:"issues"`
	CorrectedText string         `json:"corrected_text"`
}

const grammarSystemPrompt = `You are a Vietnamese and English grammar checker for academic texts.
Find grammar, spelling and style problems. Respond with JSON only:
{"issues": [{"excerpt": "...", "issue": "...", "suggestion": "..."}], "corrected_text": "..."}`

// CheckGrammar analyzes a text for grammar problems, charged against the
// grammar check quota.
func (s *Service) CheckGrammar(ctx context.Context, userID uint, text string) (*GrammarReport, error) {
	var report GrammarReport
	err := s.invoke.Invoke(ctx, userID, plans.FeatureGrammarCheck, func(ctx context.Context) error {
		raw, err := s.ai.Complete(ctx, grammarSystemPrompt, text)
		if err != nil {
			return err
		}
		return decodeJSON(raw, &report)
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

const summarySystemPrompt = `You are an academic summarizer for Vietnamese students.
Summarize the given document faithfully. Respond with the summary text only, in
the document's language.`

// Summarize condenses a document, charged against the summary quota.
func (s *Service) Summarize(ctx context.Context, userID uint, text string, maxWords int) (string, error) {
	if maxWords <= 0 {
		maxWords = 300
	}
	prompt := fmt.Sprintf("Maximum length: %d words.\n---\n%s", maxWords, text)

	var summary string
	err := s.invoke.Invoke(ctx, userID, plans.FeatureDocumentSummary, func(ctx context.Context) error {
		out, err := s.ai.Complete(ctx, summarySystemPrompt, prompt)
		if err != nil {
			return err
		}
		summary = strings.TrimSpace(out)
		return nil
	})
	if err != nil {
		return "", err
	}
	return summary, nil
}

// PlagiarismFinding is one suspicious passage.
type PlagiarismFinding struct {
	Excerpt string `json:"excerpt"`
	Reason  string `json:"reason"`
}

// PlagiarismReport scores how likely a text is to contain unoriginal content.
type PlagiarismReport struct {
	Score    float64             `json:"score"`
	Findings []PlagiarismFinding `json:"findings"`
}

const plagiarismSystemPrompt = `You are a plagiarism risk analyzer for academic texts.
Estimate how likely the text contains unoriginal or unattributed content and
point at suspicious passages. Respond with JSON only:
{"score": 0.0, "findings": [{"excerpt": "...", "reason": "..."}]}`

// CheckPlagiarism estimates plagiarism risk, charged against the plagiarism
// check quota. Free-tier users are denied before any model call.
func (s *Service) CheckPlagiarism(ctx context.Context, userID uint, text string) (*PlagiarismReport, error) {
	var report PlagiarismReport
	err := s.invoke.Invoke(ctx, userID, plans.FeaturePlagiarismCheck, func(ctx context.Context) error {
		raw, err := s.ai.Complete(ctx, plagiarismSystemPrompt, text)
		if err != nil {
			return err
		}
		return decodeJSON(raw, &report)
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// decodeJSON parses a model response that may wrap its JSON in markdown code
// fences.
func decodeJSON(raw string, v interface{}) error {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("malformed model response: %w", err)
	}
	return nil
}
