package handlers

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getPrompt(t *testing.T, name string, args map[string]string) (*mcp.GetPromptResult, error) {
	t.Helper()
	h := NewPromptHandlers(newTestHandlers(sampleBackend()))
	return h.GetPrompt(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Name: name, Arguments: args},
	})
}

func promptText(t *testing.T, result *mcp.GetPromptResult) string {
	t.Helper()
	require.Len(t, result.Messages, 1)
	text, ok := result.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestBirthdayGreetingPrompt(t *testing.T) {
	result, err := getPrompt(t, "birthday-greeting", map[string]string{"name": "grace hopper", "tone": "playful"})
	require.NoError(t, err)

	text := promptText(t, result)
	assert.Contains(t, text, "Name: Grace Hopper")
	assert.Contains(t, text, "Birthday: December 9")
	assert.Contains(t, text, "Turning: 120")
	assert.Contains(t, text, "Tone: playful")
	assert.Equal(t, "Birthday greeting for Grace Hopper", result.Description)
}

func TestBirthdayGreetingPromptErrors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]string
	}{
		{"missing name", map[string]string{}},
		{"unknown contact", map[string]string{"name": "Charles Babbage"}},
		{"no birthday", map[string]string{"name": "No Birthday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := getPrompt(t, "birthday-greeting", tt.args)
			assert.Error(t, err)
		})
	}
}

func TestUpcomingBirthdaysPrompt(t *testing.T) {
	result, err := getPrompt(t, "upcoming-birthdays", nil)
	require.NoError(t, err)
	assert.Contains(t, promptText(t, result), "(none)")

	result, err = getPrompt(t, "upcoming-birthdays", map[string]string{"days": "60"})
	require.NoError(t, err)
	text := promptText(t, result)
	assert.Contains(t, text, "- Grace Hopper on 2026-12-09")
	assert.NotContains(t, text, "Ada Lovelace")

	_, err = getPrompt(t, "upcoming-birthdays", map[string]string{"days": "soon"})
	assert.Error(t, err)
}

func TestUnknownPrompt(t *testing.T) {
	_, err := getPrompt(t, "contact-summary", nil)
	assert.Error(t, err)
}
