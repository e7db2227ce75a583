package domain

import "encoding/json"

// Criterion names used in sub_scores. The model is instructed to score
// exactly these four.
const (
	CriterionSkills          = "skills"
	CriterionExperience      = "experience"
	CriterionEducation       = "education"
	CriterionDomainKnowledge = "domain_knowledge"
)

// FallbackSummary is the sentinel summary carried by the fallback
// result when the model call or its response parsing fails.
const FallbackSummary = "Could not parse AI response or API error occurred."

// SkillsBreakdown lists how the resume's skills line up with the job
// description.
type SkillsBreakdown struct {
	Matched                 []string `json:"matched"`
	Missing                 []string `json:"missing"`
	RecommendedImprovements []string `json:"recommended_improvements"`
}

// EvaluationResult is the normalized output of one resume evaluation.
// Success or failure, it is always fully shaped: consumers only ever
// see low or empty values, never a nil result.
type EvaluationResult struct {
	OverallScore int             `json:"overall_score"`
	SubScores    map[string]int  `json:"sub_scores"`
	Summary      string          `json:"summary"`
	Skills       SkillsBreakdown `json:"skills"`
	Filename     string          `json:"filename"`
}

// FallbackResult returns the fixed result substituted whenever an
// evaluation fails. Collections are initialized so the encoded JSON
// stays fully shaped ({} and [] rather than null).
func FallbackResult() EvaluationResult {
	return EvaluationResult{
		OverallScore: 0,
		SubScores:    map[string]int{},
		Summary:      FallbackSummary,
		Skills: SkillsBreakdown{
			Matched:                 []string{},
			Missing:                 []string{},
			RecommendedImprovements: []string{},
		},
	}
}

// Normalize clamps every score into 0-10 and replaces nil collections
// with empty ones so a freshly decoded result is safe for every
// consumer.
func (r *EvaluationResult) Normalize() {
	r.OverallScore = clampScore(r.OverallScore)
	if r.SubScores == nil {
		r.SubScores = map[string]int{}
	}
	for name, score := range r.SubScores {
		r.SubScores[name] = clampScore(score)
	}
	if r.Skills.Matched == nil {
		r.Skills.Matched = []string{}
	}
	if r.Skills.Missing == nil {
		r.Skills.Missing = []string{}
	}
	if r.Skills.RecommendedImprovements == nil {
		r.Skills.RecommendedImprovements = []string{}
	}
}

// DecodeResult decodes a stored result_json payload. Unknown fields are
// ignored so older readers tolerate schema additions.
func DecodeResult(payload []byte) (EvaluationResult, error) {
	var result EvaluationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return EvaluationResult{}, err
	}
	result.Normalize()
	return result, nil
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 10 {
		return 10
	}
	return n
}
