package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .deepresearch.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to deepresearch! Let's configure your research assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. LLM provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "openrouter"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)

	// 2. Report model.
	modelPrompt := promptui.Prompt{
		Label:   "Report model",
		Default: cfg.Model,
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model prompt: %w", err)
	}
	cfg.Model = strings.TrimSpace(model)

	// 3. Planner model.
	plannerPrompt := promptui.Prompt{
		Label:   "Planner model (reasoning-capable)",
		Default: cfg.PlannerModel,
	}
	planner, err := plannerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("planner model prompt: %w", err)
	}
	cfg.PlannerModel = strings.TrimSpace(planner)

	// 4. Search provider.
	searchPrompt := promptui.Select{
		Label: "Select web search provider",
		Items: []string{"serper", "bing"},
	}
	_, searchStr, err := searchPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("search provider selection: %w", err)
	}
	cfg.SearchProvider = SearchProviderType(searchStr)

	// 5. Max research questions for pro mode.
	questionsPrompt := promptui.Prompt{
		Label:   "Max research questions in pro mode (2-8)",
		Default: strconv.Itoa(cfg.MaxQuestions),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("must be a number")
			}
			if n < 2 || n > 8 {
				return fmt.Errorf("must be between 2 and 8")
			}
			return nil
		},
	}
	questionsStr, err := questionsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("max questions prompt: %w", err)
	}
	cfg.MaxQuestions, _ = strconv.Atoi(questionsStr)

	// 6. Redis address (optional, blank disables caching).
	redisPrompt := promptui.Prompt{
		Label:   "Redis address for caching (blank to disable)",
		Default: "",
	}
	redisAddr, err := redisPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("redis prompt: %w", err)
	}
	cfg.RedisAddr = strings.TrimSpace(redisAddr)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Save(".deepresearch.yml"); err != nil {
		return nil, err
	}

	fmt.Println()
	fmt.Println("Configuration saved to .deepresearch.yml")
	if key := APIKeyEnvVar(cfg.Provider); key != "" && os.Getenv(key) == "" {
		fmt.Printf("Remember to set %s before running research.\n", key)
	}
	switch cfg.SearchProvider {
	case SearchSerper:
		if os.Getenv("SERPER_API_KEY") == "" {
			fmt.Println("Remember to set SERPER_API_KEY for web search.")
		}
	case SearchBing:
		if os.Getenv("AZURE_SEARCH_KEY") == "" {
			fmt.Println("Remember to set AZURE_SEARCH_KEY for web search.")
		}
	}

	return cfg, nil
}
