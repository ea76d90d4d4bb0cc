package chatmodel

import "sync"

// ModelPricing is USD cost per 1M tokens, trimmed from graph/cost.go's
// defaultModelPricing to the endpoints' default models plus a few related
// ones.
type ModelPricing struct {
	InputPer1M  float64
	OutputPer1M float64
}

var defaultPricing = map[string]ModelPricing{
	"gpt-4o":                     {InputPer1M: 2.50, OutputPer1M: 10.00},
	"gpt-4o-mini":                {InputPer1M: 0.15, OutputPer1M: 0.60},
	"claude-sonnet-4-5-20250929": {InputPer1M: 3.00, OutputPer1M: 15.00},
	"claude-3-5-haiku-20241022":  {InputPer1M: 0.80, OutputPer1M: 4.00},
	"gemini-2.5-flash":           {InputPer1M: 0.30, OutputPer1M: 2.50},
}

// CostTracker accumulates estimated USD spend across a probe's Invoke
// calls, grounded on graph/cost.go's CostTracker with the multi-node
// bookkeeping (per-node call log) dropped since a chat-probe module only
// ever tracks its own instance's calls.
type CostTracker struct {
	mu      sync.Mutex
	pricing map[string]ModelPricing

	TotalCost    float64
	InputTokens  int64
	OutputTokens int64
}

// NewCostTracker returns a tracker seeded with defaultPricing.
func NewCostTracker() *CostTracker {
	pricing := make(map[string]ModelPricing, len(defaultPricing))
	for k, v := range defaultPricing {
		pricing[k] = v
	}
	return &CostTracker{pricing: pricing}
}

// Record folds one Reply's token usage into the running total, pricing it
// against modelName (unpriced models cost nothing — the estimate degrades
// to a token count, not a hard error).
func (ct *CostTracker) Record(modelName string, reply Reply) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	ct.InputTokens += reply.InputTokens
	ct.OutputTokens += reply.OutputTokens

	price, ok := ct.pricing[modelName]
	if !ok {
		return
	}
	ct.TotalCost += float64(reply.InputTokens)/1_000_000*price.InputPer1M +
		float64(reply.OutputTokens)/1_000_000*price.OutputPer1M
}

// Snapshot returns the current cumulative cost and token counts.
func (ct *CostTracker) Snapshot() (totalCostUSD float64, inputTokens, outputTokens int64) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.TotalCost, ct.InputTokens, ct.OutputTokens
}
