package domain

import "time"

// EngineType identifies a translation backend family.
type EngineType string

const (
	EngineLocal      EngineType = "local"
	EngineSelfHosted EngineType = "selfhosted"
	EngineBaidu      EngineType = "baidu"
	EngineGoogle     EngineType = "google"
	EngineOpenAI     EngineType = "openai"
	EngineGemini     EngineType = "gemini"
	EngineOllama     EngineType = "ollama"
	EngineCustom     EngineType = "custom"
)

// Engines lists every known engine type in menu order.
func Engines() []EngineType {
	return []EngineType{
		EngineLocal, EngineSelfHosted, EngineBaidu, EngineGoogle,
		EngineOpenAI, EngineGemini, EngineOllama, EngineCustom,
	}
}

// RequiresCredentials reports whether an engine type needs stored secrets
// before a provider can be created for it.
func (e EngineType) RequiresCredentials() bool {
	switch e {
	case EngineLocal, EngineSelfHosted, EngineOllama, EngineCustom:
		// Self-hosted and custom endpoints may carry an optional secret,
		// but work without one.
		return false
	}
	return true
}

// DefaultTimeout bounds a single provider request.
const DefaultTimeout = 30 * time.Second

// ProviderConfig carries the per-provider knobs. Built once at provider
// creation and not mutated afterwards.
type ProviderConfig struct {
	Engine         EngineType    `json:"engine"`
	BaseURL        string        `json:"base_url"`
	Model          string        `json:"model"`
	Timeout        time.Duration `json:"timeout"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	PromptTemplate string        `json:"prompt_template,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// StoredCredentials holds decrypted secret material for one provider.
// Never logged and never written outside the secure store.
type StoredCredentials struct {
	APIKey string `json:"api_key"`
	AppID  string `json:"app_id,omitempty"`
}
