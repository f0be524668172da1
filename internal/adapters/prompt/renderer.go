package prompt

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
)

// Renderer expands the built-in prompt templates, letting a per-provider
// override body win when one is configured.
type Renderer struct{}

func New() *Renderer { return &Renderer{} }

func (r *Renderer) Render(name, override string, data ports.PromptData) (string, error) {
	body := override
	if body == "" {
		body = builtinTemplate(name)
	}
	if body == "" {
		return "", fmt.Errorf("unknown prompt template %q", name)
	}
	tpl, err := template.New(name).Parse(body)
	if err != nil {
		return "", fmt.Errorf("parse prompt %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}

func builtinTemplate(name string) string {
	switch name {
	case "extract_segments":
		return "You are a screen text extractor. Identify every distinct piece of text in the image. " +
			"Return only JSON of the form {\"segments\":[{\"text\":\"...\",\"bbox\":[x1,y1,x2,y2]}]}. " +
			"bbox coordinates are fractions of image width and height in [0,1], top-left origin. " +
			"Keep reading order. Do not add commentary or code fences."
	case "translate_single":
		return "Translate the following text{{if .SrcLang}} from {{.SrcLang}}{{end}} to {{.TgtLang}}. " +
			"Keep numbers, punctuation and line breaks. Return only the translation, nothing else.\n\n{{.Text}}"
	case "translate_joined":
		return "Translate each of the {{.Count}} numbered parts below{{if .SrcLang}} from {{.SrcLang}}{{end}} to {{.TgtLang}}. " +
			"The parts are separated by the marker {{.Delim}}. Reply with the {{.Count}} translations separated by the same marker, " +
			"in the same order, and nothing else.\n\n{{.Text}}"
	}
	return ""
}
