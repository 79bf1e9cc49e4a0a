package usecase

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

type promptData struct {
	Context string
	Query   string
}

// buildPrompt renders the answering prompt from the retrieved context
// and the user question.
func buildPrompt(context, query string) (string, error) {
	tmplContent, err := promptTemplates.ReadFile("templates/answer_prompt.txt")
	if err != nil {
		return "", fmt.Errorf("template not found: %w", err)
	}

	tmpl, err := template.New("answer").Parse(string(tmplContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{Context: context, Query: query}); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}
