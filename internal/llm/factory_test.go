package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooplens/hooplens/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LLMConfig
		wantModel string
		wantErr   bool
	}{
		{
			name:      "openai with key",
			cfg:       config.LLMConfig{Provider: "openai", APIKey: "test-key"},
			wantModel: "gpt-4o-mini",
		},
		{
			name:    "openai without key fails",
			cfg:     config.LLMConfig{Provider: "openai"},
			wantErr: true,
		},
		{
			name:      "anthropic with key",
			cfg:       config.LLMConfig{Provider: "anthropic", APIKey: "test-key"},
			wantModel: "claude-3-5-sonnet-latest",
		},
		{
			name:      "ollama needs no key",
			cfg:       config.LLMConfig{Provider: "ollama"},
			wantModel: "llama3.1",
		},
		{
			name:      "explicit model overrides default",
			cfg:       config.LLMConfig{Provider: "ollama", Model: "mistral"},
			wantModel: "mistral",
		},
		{
			name:    "unsupported provider",
			cfg:     config.LLMConfig{Provider: "mainframe"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, client.ModelName())
		})
	}
}
