package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NelaStaffing/hardware-store-bot/core"
)

//go:embed prompts/system.yaml
var defaultPrompt []byte

// PromptFile is the on-disk layout of a system prompt.
type PromptFile struct {
	Version  string          `yaml:"version"`
	Sections []PromptSection `yaml:"sections"`
}

type PromptSection struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// Prompt is a rendered system instruction and the version it came from.
type Prompt struct {
	Version string
	Text    string
}

// LoadPrompt reads a prompt file, or the embedded default when path is empty.
func LoadPrompt(path string) (Prompt, error) {
	data := defaultPrompt
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Prompt{}, fmt.Errorf("read system prompt: %w", err)
		}
		data = b
	}
	return ParsePrompt(data)
}

func ParsePrompt(data []byte) (Prompt, error) {
	var f PromptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Prompt{}, fmt.Errorf("%w: parse system prompt: %v", core.ErrInvalidConfig, err)
	}

	parts := make([]string, 0, len(f.Sections))
	for _, s := range f.Sections {
		body := strings.TrimSpace(s.Body)
		if body == "" {
			continue
		}
		if s.Title != "" {
			body = s.Title + "\n\n" + body
		}
		parts = append(parts, body)
	}
	if len(parts) == 0 {
		return Prompt{}, fmt.Errorf("%w: system prompt is empty", core.ErrInvalidConfig)
	}

	return Prompt{Version: f.Version, Text: strings.Join(parts, "\n\n")}, nil
}
