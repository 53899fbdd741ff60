package config

// DefaultConfig returns the default configuration with the stock company
// profile and department roster.
func DefaultConfig() *Config {
	return &Config{
		Company: CompanyProfile{
			Name:        "Acme Labs",
			Sector:      "technology",
			Description: "A technology company building consumer software products.",
		},
		LLM: LLMConfig{
			BaseURL:           "https://api.groq.com/openai/v1",
			Model:             "llama3-8b-8192",
			RequestsPerMinute: 30,
		},
		Agents: map[string]AgentConfig{
			"engineering": {
				Name:         "Engineering Head",
				Role:         "Head of Engineering",
				SystemPrompt: "You lead the engineering department. You design and deliver technical solutions.",
			},
			"marketing": {
				Name:         "Marketing Head",
				Role:         "Head of Marketing",
				SystemPrompt: "You lead the marketing department. You plan campaigns, branding, and content.",
			},
			"research": {
				Name:         "Research Head",
				Role:         "Head of Research",
				SystemPrompt: "You lead the research department. You produce market and competitor analysis.",
			},
			"finance": {
				Name:         "Finance Head",
				Role:         "Head of Finance",
				SystemPrompt: "You lead the finance department. You handle budgets, forecasts, and reporting.",
			},
			"sales": {
				Name:         "Sales Head",
				Role:         "Head of Sales",
				SystemPrompt: "You lead the sales department. You drive pipeline, outreach, and deals.",
			},
			"support": {
				Name:         "Support Head",
				Role:         "Head of Customer Support",
				SystemPrompt: "You lead the support department. You resolve customer issues and track satisfaction.",
			},
		},
	}
}
