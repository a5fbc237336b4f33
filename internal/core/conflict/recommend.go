package conflict

import (
	"context"
	"fmt"

	"github.com/studymesh/conceptgraph/internal/core/common"
	"github.com/studymesh/conceptgraph/internal/core/model"
	"github.com/studymesh/conceptgraph/internal/llm"
)

// Recommender asks the LLM which side of a conflict to prefer. Output is
// advisory; the resolver works with or without it.
type Recommender struct {
	LLM llm.LLMClient
}

func NewRecommender(llmClient llm.LLMClient) *Recommender {
	return &Recommender{LLM: llmClient}
}

func (r *Recommender) Recommend(ctx context.Context, c model.ConceptConflict) (*model.AIRecommendation, error) {
	prompt := fmt.Sprintf(`Two documents define the term "%s" differently.

Source 1 (%s, page %d, confidence %.2f):
%s

Source 2 (%s, page %d, confidence %.2f):
%s

Which definition should be canonical? Prefer the more precise, complete, and
self-contained definition.

Return a JSON object:
{
  "recommended_source": "source1" or "source2",
  "reasoning": "one or two sentences",
  "confidence": 0.0-1.0
}
`,
		c.ConceptName,
		c.Source1.DocumentName, c.Source1.PageNumber, c.Source1.Confidence, c.Source1.Definition,
		c.Source2.DocumentName, c.Source2.PageNumber, c.Source2.Confidence, c.Source2.Definition,
	)

	response, err := r.LLM.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate recommendation: %w", err)
	}

	rec, err := common.ParseJSON[model.AIRecommendation](response)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recommendation: %w", err)
	}
	if rec.RecommendedSource != model.SelectSource1 && rec.RecommendedSource != model.SelectSource2 {
		return nil, fmt.Errorf("unexpected recommended source '%s'", rec.RecommendedSource)
	}
	return &rec, nil
}
