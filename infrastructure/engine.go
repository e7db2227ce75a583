package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"resume-screener/domain"
)

// Generator is the outbound model contract: one prompt in, raw text
// out. The returned text is not guaranteed to be valid JSON.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EvaluationEngine turns resume text plus a job description into a
// normalized EvaluationResult. Every failure path substitutes the
// fallback result, so Evaluate never returns an error and one
// document's failure never aborts sibling documents.
type EvaluationEngine struct {
	model   Generator
	timeout time.Duration
}

func NewEvaluationEngine(model Generator, timeout time.Duration) *EvaluationEngine {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &EvaluationEngine{model: model, timeout: timeout}
}

const evaluationPromptFormat = `You are an AI resume evaluation assistant.

Compare the candidate's resume against the given job description and provide a detailed evaluation.

Please follow these instructions strictly:
- Respond with only valid JSON, no markdown, no explanations, no code fences.
- Use this exact JSON structure:
{
    "overall_score": (integer from 0-10 representing overall fit),
    "sub_scores": {
        "skills": (integer 0-10),
        "experience": (integer 0-10),
        "education": (integer 0-10),
        "domain_knowledge": (integer 0-10)
    },
    "summary": "A 1-2 sentence summary of how well the resume matches the job.",
    "skills": {
        "matched": ["list", "of", "skills", "found", "in", "resume"],
        "missing": ["list", "of", "important", "skills", "missing"],
        "recommended_improvements": ["list", "of", "specific", "improvements"]
    }
}

Resume Text:
%s

Job Description:
%s`

// Evaluate runs one model call for one document. Timeout expiry,
// transport errors and unparseable responses all degrade to the
// fallback result.
func (e *EvaluationEngine) Evaluate(ctx context.Context, resumeText, jobDescription string) domain.EvaluationResult {
	prompt := fmt.Sprintf(evaluationPromptFormat, resumeText, jobDescription)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.model.Generate(callCtx, prompt)
	if err != nil {
		logrus.WithError(err).Warn("model call failed, substituting fallback result")
		return domain.FallbackResult()
	}

	result, err := parseEvaluationResponse(raw)
	if err != nil {
		logrus.WithError(err).Warn("could not parse model response, substituting fallback result")
		return domain.FallbackResult()
	}
	return result
}

// parseEvaluationResponse decodes the model's raw text leniently:
// markdown fences are stripped and only the first '{' through the last
// '}' is decoded. Scores are clamped to 0-10.
func parseEvaluationResponse(raw string) (domain.EvaluationResult, error) {
	content := strings.TrimSpace(raw)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return domain.EvaluationResult{}, fmt.Errorf("no JSON object in response")
	}

	var result domain.EvaluationResult
	if err := json.Unmarshal([]byte(content[start:end+1]), &result); err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("failed to parse JSON: %w", err)
	}
	result.Normalize()
	return result, nil
}
