package cli

import (
	"bufio"
	"cmp"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

// providerRole is one of the two provider slots the settings commands fill.
// Building one reads settingsService, so check it for nil first.
type providerRole struct {
	title     string
	label     string
	errLabel  string
	providers []domain.AIProvider
	models    map[domain.AIProvider]string
	set       func(p domain.AIProvider, model, apiKey string) error
	validate  func() error
}

func embeddingRole() providerRole {
	return providerRole{
		title:     "Embedding Provider",
		label:     "Embedding",
		errLabel:  "embedding",
		providers: domain.AllEmbeddingProviders(),
		models:    domain.DefaultEmbeddingModels(),
		set:       settingsService.SetEmbeddingProvider,
		validate:  settingsService.ValidateEmbeddingConfig,
	}
}

func llmRole() providerRole {
	return providerRole{
		title:     "LLM Provider",
		label:     "LLM",
		errLabel:  "LLM",
		providers: domain.AllLLMProviders(),
		models:    domain.DefaultLLMModels(),
		set:       settingsService.SetLLMProvider,
		validate:  settingsService.ValidateLLMConfig,
	}
}

func runProviderCommand(cmd *cobra.Command, args []string, role func() providerRole) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	return configureProvider(cmd, bufio.NewReader(cmd.InOrStdin()), name, role())
}

// configureProvider saves the provider, then pings it. A failed ping is
// returned as an error but the choice stays saved.
func configureProvider(cmd *cobra.Command, reader *bufio.Reader, name string, role providerRole) error {
	selected, err := selectProvider(cmd, reader, "Select "+role.title, name, role.providers)
	if err != nil {
		return err
	}
	model, apiKey := providerDetails(cmd, reader, selected, role.models[selected], name == "")

	if err := role.set(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", role.errLabel, err)
	}

	cmd.Print("Validating configuration... ")
	if err := role.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", role.errLabel, err)
	}
	cmd.Println("OK")
	cmd.Printf("%s provider configured: %s (%s)\n\n", role.label, selected.Description(), model)
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Print("Lens Settings Wizard\n====================\n\n")

	heading(cmd, "Step 1: Configure Embedding Provider")
	cmd.Print("The local provider works offline. Ollama and OpenAI give better matches.\n\n")
	if err := configureProvider(cmd, reader, "", embeddingRole()); err != nil {
		return err
	}

	heading(cmd, "Step 2: Configure LLM Provider (optional)")
	cmd.Print("Summarise analysis results with an LLM? [y/N]: ")
	if yes(readLine(reader)) {
		if err := configureProvider(cmd, reader, "", llmRole()); err != nil {
			return err
		}
	} else {
		cmd.Print("Skipped. Summaries are built from snippet labels.\n\n")
	}

	heading(cmd, "Configuration Complete!")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		return nil
	}
	cmd.Println("All settings are valid and saved.")
	return nil
}

func heading(cmd *cobra.Command, title string) {
	cmd.Println(title)
	cmd.Println(strings.Repeat("-", len(title)))
}

func yes(answer string) bool {
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

// selectProvider resolves name against providers, or asks when name is empty.
func selectProvider(cmd *cobra.Command, reader *bufio.Reader, title, name string, providers []domain.AIProvider) (domain.AIProvider, error) {
	if name != "" {
		p := domain.AIProvider(strings.ToLower(name))
		if !slices.Contains(providers, p) {
			return "", fmt.Errorf("%w: unsupported provider %q", domain.ErrInvalidInput, name)
		}
		return p, nil
	}

	cmd.Println(title)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	return providers[parseChoice(readLine(reader), len(providers), 1)-1], nil
}

// providerDetails fills what the flags left out. The model is only asked
// for interactively; a required key is always asked for.
func providerDetails(cmd *cobra.Command, reader *bufio.Reader, provider domain.AIProvider, defaultModel string, interactive bool) (model, apiKey string) {
	model = providerModel
	if model == "" && interactive {
		cmd.Printf("Enter model name [%s]: ", defaultModel)
		model = readLine(reader)
	}
	model = cmp.Or(model, defaultModel)

	apiKey = providerAPIKey
	if apiKey == "" && provider.RequiresAPIKey() {
		cmd.Print("Enter API key (blank to use the environment): ")
		apiKey = readPassword(reader)
		cmd.Println()
	}
	return model, apiKey
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// parseChoice returns defaultVal for anything outside 1..maxVal.
func parseChoice(input string, maxVal, defaultVal int) int {
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > maxVal {
		return defaultVal
	}
	return n
}

// readPassword reads without echo on a terminal, else falls back to reader.
func readPassword(reader *bufio.Reader) string {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		if pw, err := term.ReadPassword(fd); err == nil {
			return strings.TrimSpace(string(pw))
		}
	}
	return readLine(reader)
}
