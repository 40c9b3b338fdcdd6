package llm

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestNewAnthropicClient_ModelWiring(t *testing.T) {
	c := NewAnthropicClient("test-key")

	if c.model != anthropic.ModelClaudeSonnet4_0 {
		t.Errorf("unexpected model %q", c.model)
	}
	// The label recorded on curations must track the requested model.
	if c.modelName != "claude-sonnet-4-0" {
		t.Errorf("unexpected model name %q", c.modelName)
	}
}
