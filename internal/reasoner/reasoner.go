// Package reasoner implements the two-mode verdict engine (spec C7,
// §4.7.3): an LLM flow tried first, falling back to a deterministic
// heuristic ladder when the LLM is unavailable or returns something that
// doesn't validate.
//
// Grounded directly on BetterCallFirewall-Hackerecon's internal/llm
// flow idiom (genkit.DefineFlow + genkit.GenerateData[T], a flow
// defined once and invoked via flow.Run) for Mode A, and
// internal/utils/heuristics.go's QuickHeuristicAnalysis (early-return,
// confidence-scored rule ladder) for Mode B.
package reasoner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/firebase/genkit/go/ai"
	genkitcore "github.com/firebase/genkit/go/core"
	"github.com/firebase/genkit/go/genkit"
	"github.com/scamshield/agent/internal/models"
)

const llmDeadline = 5 * time.Second

// verdictRequest is the Genkit flow's input.
type verdictRequest struct {
	Prompt string `json:"prompt"`
}

// verdictResponse is the strict-JSON shape the LLM is instructed to
// produce (spec §4.7.3).
type verdictResponse struct {
	RiskLevel   string `json:"risk_level"`
	Confidence  int    `json:"confidence"`
	Explanation string `json:"explanation"`
}

// Reasoner produces an AgentResult's verdict fields from OCR text,
// extracted entities, and tool evidence.
type Reasoner struct {
	g         *genkit.Genkit
	modelName string
	flow      *genkitcore.Flow[*verdictRequest, *verdictResponse, struct{}]
}

// New builds a Reasoner. g may be nil — in that case Mode A is skipped
// and every call falls straight through to the deterministic heuristic,
// which is how the reasoner behaves in environments with no configured
// LLM provider.
func New(g *genkit.Genkit, modelName string) *Reasoner {
	r := &Reasoner{g: g, modelName: modelName}
	if g != nil {
		r.flow = genkit.DefineFlow(
			g,
			"scamVerdictFlow",
			func(ctx context.Context, req *verdictRequest) (*verdictResponse, error) {
				result, _, err := genkit.GenerateData[verdictResponse](
					ctx,
					g,
					ai.WithModelName(modelName),
					ai.WithPrompt(req.Prompt),
				)
				if err != nil {
					return nil, fmt.Errorf("verdict LLM failed: %w", err)
				}
				return result, nil
			},
		)
	}
	return r
}

// Reason implements orchestrator.Reasoner: try the LLM once, retry once
// on a validation failure, then fall back to the heuristic ladder.
func (r *Reasoner) Reason(ctx context.Context, ocrText string, entities models.ExtractedEntities, evidence []models.AgentEvidence) (models.AgentResult, error) {
	result := models.AgentResult{Evidence: evidence}

	if r.flow != nil {
		if verdict, toolsCited, ok := r.tryLLM(ctx, ocrText, entities, evidence); ok {
			result.RiskLevel = verdict.RiskLevel
			result.Confidence = verdict.Confidence
			result.ReasoningText = verdict.Explanation
			result.ReasoningMethod = models.ReasoningLLM
			result.ToolsUsed = toolsCited
			return result, nil
		}
		log.Printf("reasoner: LLM path exhausted, falling back to heuristic")
	}

	level, confidence, explanation := heuristicVerdict(evidence)
	result.RiskLevel = level
	result.Confidence = confidence
	result.ReasoningText = explanation
	result.ReasoningMethod = models.ReasoningHeuristic
	return result, nil
}

// tryLLM runs the LLM flow with one retry on an invalid response,
// per spec §4.7.3. The deadline bounds both attempts together.
func (r *Reasoner) tryLLM(ctx context.Context, ocrText string, entities models.ExtractedEntities, evidence []models.AgentEvidence) (verdictResponse, []string, bool) {
	ctx, cancel := context.WithTimeout(ctx, llmDeadline)
	defer cancel()

	prompt := buildPrompt(ocrText, entities, evidence)
	req := &verdictRequest{Prompt: prompt}

	for attempt := 0; attempt < 2; attempt++ {
		raw, err := r.flow.Run(ctx, req)
		if err != nil {
			log.Printf("reasoner: LLM attempt %d failed: %v", attempt+1, err)
			continue
		}
		if raw == nil {
			continue
		}
		if v, ok := validateVerdict(*raw); ok {
			return v, citedTools(evidence), true
		}
		log.Printf("reasoner: LLM attempt %d produced an invalid verdict, retrying", attempt+1)
	}
	return verdictResponse{}, nil, false
}

func citedTools(evidence []models.AgentEvidence) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range evidence {
		if e.Success && !seen[e.ToolName] {
			seen[e.ToolName] = true
			out = append(out, e.ToolName)
		}
	}
	return out
}
