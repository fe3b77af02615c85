package openai

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// Prompt is one structured call: model parameters plus system and user text
type Prompt struct {
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	System       string  `yaml:"system"`
	UserTemplate string  `yaml:"user_template"`
}

// PromptConfig holds the prompts of every LLM operation
type PromptConfig struct {
	ExpenseExtraction Prompt `yaml:"expense_extraction"`
	TripExtraction    Prompt `yaml:"trip_extraction"`
	Itinerary         Prompt `yaml:"itinerary"`
}

// DefaultPrompts returns the prompts compiled into the binary
func DefaultPrompts() (*PromptConfig, error) {
	return parsePrompts(defaultPromptsYAML)
}

// LoadPrompts loads prompt configuration from a YAML file.
// An empty path returns the built-in prompts.
func LoadPrompts(promptsPath string) (*PromptConfig, error) {
	if promptsPath == "" {
		return DefaultPrompts()
	}
	data, err := os.ReadFile(promptsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	return parsePrompts(data)
}

func parsePrompts(data []byte) (*PromptConfig, error) {
	var prompts PromptConfig
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompts: %w", err)
	}
	if prompts.ExpenseExtraction.UserTemplate == "" ||
		prompts.TripExtraction.UserTemplate == "" ||
		prompts.Itinerary.UserTemplate == "" {
		return nil, fmt.Errorf("prompts file is missing a user_template")
	}
	return &prompts, nil
}

// renderTemplate renders a template with provided data
func renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("prompt").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
