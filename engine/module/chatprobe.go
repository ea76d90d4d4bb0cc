package module

import (
	"context"
	"errors"
	"fmt"

	"github.com/fallout-harness/fallout/engine"
	"github.com/fallout-harness/fallout/internal/chatmodel"
)

// ChatProbe is a RUN_ONCE module that treats the ensemble's server group as
// a deployed LLM-serving product: it sends one prompt to a configured
// provider and emits `ok` with the reply text, or `error` if the provider
// call failed. The `provider` property selects the transport
// (anthropic/openai/google). RequiredProviders declares one fixed provider
// named "provider", which some group of the ensemble must publish; the
// selected transport is not checked against the ensemble.
type ChatProbe struct {
	engine.BaseModule

	// Endpoint, when set, overrides provider construction from properties
	// (used by tests to inject a chatmodel.MockEndpoint).
	Endpoint chatmodel.Endpoint
	Costs    *chatmodel.CostTracker
}

var (
	providerProp = engine.PropertySpec{Name: "provider", Required: true, Options: []string{"anthropic", "openai", "google"}}
	modelProp    = engine.PropertySpec{Name: "model", Required: false}
	promptProp   = engine.PropertySpec{Name: "prompt", Required: true}
	apiKeyProp   = engine.PropertySpec{Name: "api_key", Required: false}
)

func (ChatProbe) PropertySpecs() []engine.PropertySpec {
	return []engine.PropertySpec{providerProp, modelProp, promptProp, apiKeyProp}
}

func (ChatProbe) RequiredProviders() []string { return []string{"provider"} }

func (ChatProbe) Lifetime() (engine.Lifetime, bool) { return engine.RunOnce, true }

func (p ChatProbe) Run(ctx context.Context, mi *engine.ModuleInstance, ens engine.Ensemble, props map[string]any) error {
	prompt, _ := props["prompt"].(string)
	if prompt == "" {
		return errors.New("chatprobe: empty prompt")
	}

	endpoint := p.Endpoint
	if endpoint == nil {
		ep, err := buildEndpoint(props)
		if err != nil {
			return err
		}
		endpoint = ep
	}

	reply, err := endpoint.Invoke(ctx, []chatmodel.Message{{Role: chatmodel.RoleUser, Content: prompt}})
	if err != nil {
		return fmt.Errorf("chatprobe: %w", err)
	}

	if p.Costs != nil {
		modelName, _ := props["model"].(string)
		p.Costs.Record(modelName, reply)
	}

	return mi.Emit(engine.OpOK, "text/plain", reply.Text)
}

func buildEndpoint(props map[string]any) (chatmodel.Endpoint, error) {
	provider, _ := props["provider"].(string)
	model, _ := props["model"].(string)
	apiKey, _ := props["api_key"].(string)

	switch provider {
	case "anthropic":
		return chatmodel.NewAnthropicEndpoint(apiKey, model), nil
	case "openai":
		return chatmodel.NewOpenAIEndpoint(apiKey, model), nil
	case "google":
		return chatmodel.NewGoogleEndpoint(apiKey, model), nil
	default:
		return nil, fmt.Errorf("chatprobe: unrecognized provider %q", provider)
	}
}
