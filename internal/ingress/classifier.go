package ingress

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	genkitcore "github.com/firebase/genkit/go/core"
	"github.com/firebase/genkit/go/genkit"
)

const fastClassifierPrompt = `Classify this message for scam risk. Respond with strict JSON only:
{"risk_level": "low"|"medium"|"high", "confidence": <0.0-1.0>, "category": "otp_phishing"|"payment_scam"|"impersonation"|"unknown", "explanation": "<brief reason>"}

Message:
%s`

// GenkitClassifier is the fast-path single-call LLM classifier (spec
// §4.7.5), a lighter sibling of the reasoner's Mode A flow: one call,
// no retry, no tool evidence.
type GenkitClassifier struct {
	flow *genkitcore.Flow[*classifyRequest, *FastResult, struct{}]
}

type classifyRequest struct {
	Text string `json:"text"`
}

// NewGenkitClassifier defines the fast-path flow once at startup.
func NewGenkitClassifier(g *genkit.Genkit, modelName string) *GenkitClassifier {
	flow := genkit.DefineFlow(
		g,
		"fastClassifyFlow",
		func(ctx context.Context, req *classifyRequest) (*FastResult, error) {
			prompt := fmt.Sprintf(fastClassifierPrompt, req.Text)
			result, _, err := genkit.GenerateData[FastResult](
				ctx,
				g,
				ai.WithModelName(modelName),
				ai.WithPrompt(prompt),
			)
			if err != nil {
				return nil, fmt.Errorf("fast-path classifier failed: %w", err)
			}
			return result, nil
		},
	)
	return &GenkitClassifier{flow: flow}
}

var _ FastClassifier = (*GenkitClassifier)(nil)

func (c *GenkitClassifier) Classify(ctx context.Context, ocrText string) (FastResult, error) {
	result, err := c.flow.Run(ctx, &classifyRequest{Text: truncateForClassifier(ocrText)})
	if err != nil {
		return FastResult{}, err
	}
	if result == nil {
		return FastResult{}, fmt.Errorf("fast-path classifier returned no result")
	}
	return *result, nil
}

func truncateForClassifier(s string) string {
	const max = maxOCRTextChars
	if len(s) <= max {
		return s
	}
	return s[:max]
}
