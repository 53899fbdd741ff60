package config

// CompanyProfile describes the simulated company. Agents fold it into their
// role-playing prompts and the classifier uses the sector for fallback
// routing.
type CompanyProfile struct {
	Name        string `json:"name"`
	Sector      string `json:"sector"`
	Description string `json:"description,omitempty"`
}

// LLMConfig configures the shared text-completion client.
type LLMConfig struct {
	BaseURL           string   `json:"base_url"`
	Model             string   `json:"model"`
	APIKeys           []string `json:"api_keys,omitempty"`            // Rotated round-robin on rate limits
	RequestsPerMinute int      `json:"requests_per_minute,omitempty"` // 0 disables client-side limiting
}

// AgentConfig defines one department agent: its display name, role title,
// and role-specific system prompt.
type AgentConfig struct {
	Name         string `json:"name"`
	Role         string `json:"role"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// Config is the top-level configuration. Agents are keyed by department.
type Config struct {
	Company CompanyProfile         `json:"company"`
	LLM     LLMConfig              `json:"llm"`
	Agents  map[string]AgentConfig `json:"agents"`
}
