// Package assets builds the placeholder inputs for a generated render:
// scene lines from a local language model, gradient scene images, a
// synthesized narration track and a cached background music bed. Everything
// here is glue so a render can be kicked off from a bare topic; the renderer
// itself only ever sees file paths.
package assets

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const sceneLineCount = 4

type ScriptService struct {
	client *openai.Client
	model  string
}

// NewScriptService talks to an OpenAI-compatible endpoint, normally a local
// Ollama instance.
func NewScriptService(baseURL, model string) *ScriptService {
	cfg := openai.DefaultConfig("ollama")
	cfg.BaseURL = baseURL
	return &ScriptService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// GenerateSceneLines produces one short caption line per scene for a topic.
// Model failures fall back to a fixed set of lines so a render can always
// proceed offline.
func (s *ScriptService) GenerateSceneLines(ctx context.Context, topic string) []string {
	prompt := fmt.Sprintf(
		"Write exactly %d short, calm, reflective lines for a devotional video about %q. "+
			"One line per scene, under 12 words each, no numbering, one line per row.",
		sceneLineCount, topic)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.7,
	})
	if err != nil {
		log.Printf("[Assets] Scene line generation failed, using fallback lines: %v", err)
		return fallbackSceneLines(topic)
	}

	lines := parseSceneLines(resp.Choices[0].Message.Content)
	if len(lines) < sceneLineCount {
		log.Printf("[Assets] Model returned %d usable lines, using fallback", len(lines))
		return fallbackSceneLines(topic)
	}
	return lines[:sceneLineCount]
}

func parseSceneLines(content string) []string {
	var lines []string
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		line = strings.TrimLeft(line, "0123456789.-) ")
		line = strings.Trim(line, `"`)
		if line == "" {
			continue
		}
		if len(line) > 120 {
			line = line[:120]
		}
		lines = append(lines, line)
	}
	return lines
}

func fallbackSceneLines(topic string) []string {
	return []string{
		fmt.Sprintf("Take a quiet moment with %s", topic),
		"Breathe in, and let the stillness settle",
		"Every small step forward is enough",
		"Carry this peace into the rest of your day",
	}
}
