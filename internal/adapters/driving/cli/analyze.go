package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Find what other documents say about a passage",
	Long: `Analyses a passage selected from a reading document and lists related
sections from the rest of the library, each labelled as supporting,
contradictory or related.

Without --source the most recently uploaded reading document is used.
Pass --any-source to analyse a passage from a knowledge base document.

Examples:
  lens analyze "Revenue grew 12% in 2023" --source 3f2a...
  lens analyze "remote work lowers productivity" -n 10 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var navigateCmd = &cobra.Command{
	Use:   "navigate [doc-id] [page]",
	Short: "Show the section at a page of a document",
	Long: `Resolves a page of a document to the section covering it.

--section selects a section directly. --text picks the section on that
page containing the text.`,
	Args: cobra.ExactArgs(2),
	RunE: runNavigate,
}

var (
	analyzeSource    string
	analyzeMax       int
	analyzeJSON      bool
	analyzeAnySource bool

	navigateSection string
	navigateText    string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeSource, "source", "s", "", "document the passage comes from")
	analyzeCmd.Flags().IntVarP(&analyzeMax, "max", "n", 0, "maximum number of snippets (0 = configured default)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the result as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeAnySource, "any-source", false, "allow a knowledge base document as the source")

	navigateCmd.Flags().StringVar(&navigateSection, "section", "", "section ID to show")
	navigateCmd.Flags().StringVar(&navigateText, "text", "", "text the section should contain")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(navigateCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errAnalysisNotConfigured
	}
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	ctx := commandContext(cmd)
	text := strings.Join(args, " ")

	source, err := libraryService.SourceDocument(ctx, analyzeSource, analyzeAnySource)
	if err != nil {
		return fmt.Errorf("source document: %w", err)
	}

	result, err := analysisService.Analyze(ctx, domain.AnalysisRequest{
		Text:             text,
		SourceDocumentID: source.ID,
		MaxResults:       analyzeMax,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printAnalysis(cmd, source, result)
	return nil
}

func printAnalysis(cmd *cobra.Command, source *domain.Document, result *domain.AnalysisResult) {
	cmd.Printf("Passage from %s\n", source.DisplayName())
	cmd.Printf("  %q\n\n", result.QueryText)

	if len(result.Snippets) == 0 {
		cmd.Println("No related sections found in other documents.")
	}

	for i := range result.Snippets {
		s := &result.Snippets[i]
		cmd.Printf("%d. [%s] %s, p.%d (score %.2f)\n", s.Rank, s.Label, s.DocumentName, s.Page, s.Score)
		cmd.Printf("   %s\n", s.Title)
		cmd.Printf("   %s\n", s.Extract)
		if len(s.Signals) > 0 {
			cmd.Printf("   signals: %s\n", strings.Join(s.Signals, ", "))
		}
		cmd.Println()
	}

	if result.Summary != "" {
		cmd.Printf("Summary: %s\n", result.Summary)
	}
	cmd.Printf("(%d ms)\n", result.ProcessingTime.Milliseconds())
}

func runNavigate(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	page, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: page must be a number", domain.ErrInvalidInput)
	}

	section, err := libraryService.Navigate(commandContext(cmd), domain.NavigationRequest{
		DocumentID: args[0],
		Page:       page,
		SectionID:  navigateSection,
		Text:       navigateText,
	})
	if err != nil {
		return fmt.Errorf("navigate failed: %w", err)
	}

	cmd.Printf("%s (section %s, pages %d-%d)\n\n", section.DisplayTitle(), section.ID, section.Page, section.EndPage)
	cmd.Println(section.Body)
	return nil
}
