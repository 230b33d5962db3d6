package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

const timeFormat = "2006-01-02 15:04:05"

var addCmd = &cobra.Command{
	Use:   "add [files...]",
	Short: "Add documents to the library",
	Long: `Copies each file into the library and indexes its sections.

Files are added as knowledge base documents unless --category says otherwise.
A file that fails does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var removeCmd = &cobra.Command{
	Use:   "remove [doc-id]",
	Short: "Remove a document from the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex [doc-id]",
	Short: "Extract and embed a document again",
	Args:  cobra.ExactArgs(1),
	RunE:  runReindex,
}

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List library documents",
	Args:  cobra.NoArgs,
	RunE:  runDocuments,
}

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Inspect a library document",
	Long:  `Show a document, list its sections, or change its category.`,
}

var documentShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show document details",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentShow,
}

var documentSectionsCmd = &cobra.Command{
	Use:   "sections [doc-id]",
	Short: "List a document's sections",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentSections,
}

var documentCategoryCmd = &cobra.Command{
	Use:   "category [doc-id] [category]",
	Short: "Change a document's category",
	Long: `Moves a document between the reading and knowledge base categories.

Reading documents are cleared by 'lens prune'.`,
	Args: cobra.ExactArgs(2),
	RunE: runDocumentCategory,
}

var (
	addCategory  string
	listCategory string
)

func init() {
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "category for the new documents (reading or knowledge_base)")
	documentsCmd.Flags().StringVarP(&listCategory, "category", "c", "", "only list this category")

	documentCmd.AddCommand(documentShowCmd)
	documentCmd.AddCommand(documentSectionsCmd)
	documentCmd.AddCommand(documentCategoryCmd)

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(documentsCmd)
	rootCmd.AddCommand(documentCmd)
}

// parseOptionalCategory returns "" for an empty flag.
func parseOptionalCategory(s string) (domain.Category, error) {
	if s == "" {
		return "", nil
	}
	return domain.ParseCategory(s)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	category, err := parseOptionalCategory(addCategory)
	if err != nil {
		return err
	}

	results, err := libraryService.IngestFiles(commandContext(cmd), args, category)
	if err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			cmd.Printf("  FAILED %s: %v\n", r.Path, r.Err)
			continue
		}
		cmd.Printf("  %s  %s (%d sections)\n", r.Document.ID, r.Document.DisplayName(), r.Document.SectionCount)
	}

	cmd.Printf("\nAdded %d of %d documents\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d documents failed", failed)
	}
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	removed, err := libraryService.OnDocumentRemoved(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}
	if !removed {
		cmd.Printf("Document not found: %s\n", args[0])
		return nil
	}
	cmd.Printf("Removed document: %s\n", args[0])
	return nil
}

func runReindex(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	indexed, err := libraryService.OnDocumentIndexed(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to reindex document: %w", err)
	}
	if !indexed {
		cmd.Printf("Document not found: %s\n", args[0])
		return nil
	}
	cmd.Printf("Reindexed document: %s\n", args[0])
	return nil
}

func runDocuments(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	category, err := parseOptionalCategory(listCategory)
	if err != nil {
		return err
	}

	docs, err := libraryService.List(commandContext(cmd), category)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents in the library.")
		cmd.Println("Use 'lens add' to add some.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Name:     %s\n", docs[i].DisplayName())
		cmd.Printf("    Category: %s\n", docs[i].Category)
		cmd.Printf("    Sections: %d\n", docs[i].SectionCount)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentShow(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	doc, err := libraryService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Name:      %s\n", doc.Name)
	if doc.Title != "" {
		cmd.Printf("  Title:     %s\n", doc.Title)
	}
	cmd.Printf("  Type:      %s\n", doc.MIMEType)
	cmd.Printf("  Category:  %s\n", doc.Category.Description())
	cmd.Printf("  Pages:     %d\n", doc.PageCount)
	cmd.Printf("  Sections:  %d\n", doc.SectionCount)
	cmd.Printf("  Uploaded:  %s\n", doc.UploadedAt.Format(timeFormat))
	if doc.IsIndexed() {
		cmd.Printf("  Indexed:   %s\n", doc.IndexedAt.Format(timeFormat))
	} else {
		cmd.Printf("  Indexed:   no\n")
	}
	cmd.Printf("  URI:       %s\n", doc.URI)

	if len(doc.Metadata) > 0 {
		cmd.Println("\n  Metadata:")
		for k, v := range doc.Metadata {
			cmd.Printf("    %s: %v\n", k, v)
		}
	}
	return nil
}

func runDocumentSections(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	sections, err := libraryService.Sections(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to list sections: %w", err)
	}

	if len(sections) == 0 {
		cmd.Printf("No sections for document: %s\n", args[0])
		return nil
	}

	for i := range sections {
		s := &sections[i]
		cmd.Printf("  %-12s p.%-4d %s (%d words)\n", s.ID, s.Page, s.DisplayTitle(), s.WordCount)
	}
	cmd.Printf("\nTotal: %d sections\n", len(sections))
	return nil
}

func runDocumentCategory(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	category, err := domain.ParseCategory(args[1])
	if err != nil {
		return err
	}

	if err := libraryService.SetCategory(commandContext(cmd), args[0], category); err != nil {
		return fmt.Errorf("failed to set category: %w", err)
	}
	cmd.Printf("Document %s is now %s\n", args[0], category.Description())
	return nil
}
