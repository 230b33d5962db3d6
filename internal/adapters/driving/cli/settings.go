package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
	"github.com/custodia-labs/sercha-lens/internal/core/services"
)

var (
	providerModel  string
	providerAPIKey string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change configuration",
	Long: `Shows the embedding and LLM providers, analysis thresholds and library
options. Subcommands change them one at a time or through a wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Pick the embedding and LLM providers step by step",
	RunE:  runSettingsWizard,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Changes one setting by its config.toml key. Values are checked before
they are saved.

Keys:
  ` + strings.Join(services.SettableKeys(), "\n  "),
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding [provider]",
	Short: "Choose the embedding provider",
	Long: `Chooses the provider that embeds sections: local, ollama or openai.
Without an argument you are asked to pick one. Documents embedded at a
different vector size are indexed again on the next start.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProviderCommand(cmd, args, embeddingRole)
	},
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm [provider]",
	Short: "Choose the LLM that writes insight summaries",
	Long: `Chooses the LLM behind insight summaries: ollama, openai or anthropic.
'none' turns summaries off, leaving the label-count summary.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && (args[0] == "none" || args[0] == "off") {
			return clearLLM(cmd)
		}
		return runProviderCommand(cmd, args, llmRole)
	},
}

func init() {
	for _, c := range []*cobra.Command{settingsEmbeddingCmd, settingsLLMCmd} {
		c.Flags().StringVarP(&providerModel, "model", "m", "", "model name (default depends on provider)")
		c.Flags().StringVar(&providerAPIKey, "api-key", "", "API key (asked for when required and not given)")
	}
	settingsCmd.AddCommand(settingsShowCmd, settingsWizardCmd, settingsSetCmd, settingsEmbeddingCmd, settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingsPrinter writes "[Table]" headers and indented "Label: value" rows.
type settingsPrinter struct{ cmd *cobra.Command }

func (p settingsPrinter) table(name string) {
	p.cmd.Printf("[%s]\n", name)
}

func (p settingsPrinter) row(label, format string, args ...any) {
	p.cmd.Printf("  %s: %s\n", label, fmt.Sprintf(format, args...))
}

func (p settingsPrinter) apiKey(provider domain.AIProvider, key string) {
	switch {
	case !provider.RequiresAPIKey():
	case key == "":
		p.row("API Key", "(not set)")
	default:
		p.row("API Key", "%s", maskAPIKey(key))
	}
}

func (p settingsPrinter) end() { p.cmd.Println() }

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Print("Current Settings\n================\n\n")
	p := settingsPrinter{cmd}

	emb := settings.Embedding
	p.table("Embedding")
	p.row("Provider", "%s", emb.Provider.Description())
	p.row("Model", "%s", emb.Model)
	if emb.Provider == domain.AIProviderOllama {
		p.row("Base URL", "%s", emb.BaseURL)
	}
	p.apiKey(emb.Provider, emb.APIKey)
	if emb.Dimensions > 0 {
		p.row("Dimensions", "%d", emb.Dimensions)
	}
	if emb.RequestsPerSecond > 0 {
		p.row("Rate limit", "%.1f/s (burst %d)", emb.RequestsPerSecond, emb.Burst)
	}
	p.row("Status", "%s", configuredStatus(emb.IsConfigured()))
	p.end()

	llm := settings.LLM
	p.table("LLM")
	if llm.Provider == "" {
		p.row("Provider", "none (summaries are built from labels)")
	} else {
		p.row("Provider", "%s", llm.Provider.Description())
		p.row("Model", "%s", llm.Model)
		if llm.Provider == domain.AIProviderOllama {
			p.row("Base URL", "%s", llm.BaseURL)
		}
		p.apiKey(llm.Provider, llm.APIKey)
		p.row("Status", "%s", configuredStatus(llm.IsConfigured()))
	}
	p.end()

	ext := settings.Extraction
	p.table("Extraction")
	p.row("Section words", "%d-%d (target %d)", ext.MinWords, ext.MaxWords, ext.TargetWords)
	p.row("Heading ratio", "%.2f", ext.HeadingRatio)
	p.end()

	a := settings.Analysis
	p.table("Analysis")
	p.row("Similarity floor", "%.2f", a.SimilarityFloor)
	p.row("Supporting threshold", "%.2f", a.SupportingThreshold)
	p.row("Contradiction threshold", "%.2f", a.ContradictionThreshold)
	p.row("Max results", "%d (candidates x%d)", a.MaxResults, a.CandidateMultiplier)
	p.row("Extract sentences", "%d-%d", a.MinSentences, a.MaxSentences)
	p.row("Timeout", "%s", a.Timeout)
	p.end()

	p.table("Library")
	if settings.Library.Path != "" {
		p.row("Path", "%s", settings.Library.Path)
	}
	p.row("Default category", "%s", settings.Library.DefaultCategory)
	if settings.Classifier.LexiconPath != "" {
		p.row("Lexicon", "%s", settings.Classifier.LexiconPath)
	}
	p.end()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'lens settings wizard' to fix configuration issues.")
		return nil
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("%s updated\n", args[0])
	return nil
}

func clearLLM(cmd *cobra.Command) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	if err := settingsService.ClearLLMProvider(); err != nil {
		return fmt.Errorf("failed to clear LLM provider: %w", err)
	}
	cmd.Println("LLM provider removed. Summaries are built from snippet labels.")
	return nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
