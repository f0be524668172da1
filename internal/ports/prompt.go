package ports

// PromptData feeds the prompt templates.
type PromptData struct {
	SrcLang string
	TgtLang string
	Text    string
	Count   int
	Delim   string
}

// PromptRenderer renders a named built-in template, or an override body when
// the provider config carries one.
type PromptRenderer interface {
	Render(name, override string, data PromptData) (string, error)
}
