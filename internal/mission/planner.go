package mission

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/leadscout/pkg/anthropic"
)

// Plan is the search directive derived from a free-form mission goal.
type Plan struct {
	Query    string `json:"query"`
	Location string `json:"location"`
}

// Planner turns a mission goal into a search plan.
type Planner interface {
	Plan(ctx context.Context, goal string) (Plan, error)
}

// HeuristicPlanner splits the goal on its last " in " separator, so
// "plumbers in Austin, TX" becomes query "plumbers", location "Austin, TX".
// Goals without the separator search as-is with no location.
type HeuristicPlanner struct{}

func (HeuristicPlanner) Plan(_ context.Context, goal string) (Plan, error) {
	goal = strings.TrimSpace(goal)
	if idx := strings.LastIndex(goal, " in "); idx > 0 {
		return Plan{
			Query:    strings.TrimSpace(goal[:idx]),
			Location: strings.TrimSpace(goal[idx+len(" in "):]),
		}, nil
	}
	return Plan{Query: goal}, nil
}

// AnthropicPlanner asks a model to decompose the goal. Any failure falls
// back to the heuristic so planning never blocks a mission.
type AnthropicPlanner struct {
	client   anthropic.Client
	model    string
	fallback HeuristicPlanner
}

// NewAnthropicPlanner creates a planner backed by the given client. An empty
// model selects the package default.
func NewAnthropicPlanner(client anthropic.Client, model string) *AnthropicPlanner {
	return &AnthropicPlanner{client: client, model: model}
}

const plannerSystemPrompt = `You convert a business lead discovery goal into a search plan.
Respond with a single JSON object and nothing else:
{"query": "<business type or service to search for>", "location": "<city/region, or empty string if the goal names none>"}`

func (p *AnthropicPlanner) Plan(ctx context.Context, goal string) (Plan, error) {
	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: 256,
		System:    []anthropic.SystemBlock{{Text: plannerSystemPrompt}},
		Messages:  []anthropic.Message{{Role: "user", Content: goal}},
	})
	if err != nil {
		zap.L().Warn("planner model call failed, using heuristic",
			zap.Error(err))
		return p.fallback.Plan(ctx, goal)
	}

	plan, ok := parsePlan(resp.Text())
	if !ok || plan.Query == "" {
		zap.L().Warn("planner returned unusable plan, using heuristic",
			zap.String("raw", resp.Text()))
		return p.fallback.Plan(ctx, goal)
	}
	return plan, nil
}

// parsePlan extracts the first JSON object from the model output. Models
// occasionally wrap the object in prose or code fences.
func parsePlan(raw string) (Plan, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return Plan{}, false
	}
	var plan Plan
	if err := json.Unmarshal([]byte(raw[start:end+1]), &plan); err != nil {
		return Plan{}, false
	}
	plan.Query = strings.TrimSpace(plan.Query)
	plan.Location = strings.TrimSpace(plan.Location)
	return plan, true
}
