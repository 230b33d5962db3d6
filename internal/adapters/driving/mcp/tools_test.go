package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

func TestServer_handleAnalyze(t *testing.T) {
	ctx := context.Background()

	t.Run("returns labelled snippets", func(t *testing.T) {
		analysis := &mockAnalysisService{
			result: &domain.AnalysisResult{
				QueryText:        "revenue grew 12%",
				SourceDocumentID: "doc-src",
				Snippets: []domain.Snippet{
					{Rank: 1, DocumentID: "doc-2", SectionID: "s-1", Label: domain.LabelContradictory, Score: 0.81},
					{Rank: 2, DocumentID: "doc-3", SectionID: "s-4", Label: domain.LabelSupporting, Score: 0.74},
				},
				Summary:        "1 contradictory, 1 supporting",
				ProcessingTime: 42 * time.Millisecond,
			},
		}
		library := &mockLibraryService{}
		server, err := newTestServer(analysis, library)
		require.NoError(t, err)

		_, out, err := server.handleAnalyze(ctx, nil, AnalyzeInput{
			Text:             "revenue grew 12%",
			SourceDocumentID: "doc-src",
			MaxResults:       3,
		})

		require.NoError(t, err)
		require.Len(t, out.Snippets, 2)
		assert.Equal(t, domain.LabelContradictory, out.Snippets[0].Label)
		assert.Equal(t, "doc-src", out.SourceDocumentID)
		assert.Equal(t, int64(42), out.ProcessingMillis)
		assert.Equal(t, "1 contradictory, 1 supporting", out.Summary)

		assert.Equal(t, "doc-src", analysis.lastReq.SourceDocumentID)
		assert.Equal(t, 3, analysis.lastReq.MaxResults)
		assert.True(t, library.lastAllowKB)
	})

	t.Run("resolves default source", func(t *testing.T) {
		analysis := &mockAnalysisService{result: &domain.AnalysisResult{}}
		library := &mockLibraryService{document: &domain.Document{ID: "latest-reading"}}
		server, err := newTestServer(analysis, library)
		require.NoError(t, err)

		_, _, err = server.handleAnalyze(ctx, nil, AnalyzeInput{Text: "x"})
		require.NoError(t, err)
		assert.Empty(t, library.lastSource)
		assert.Equal(t, "latest-reading", analysis.lastReq.SourceDocumentID)
	})

	t.Run("source lookup failure", func(t *testing.T) {
		library := &mockLibraryService{sourceErr: domain.ErrNotFound}
		server, err := newTestServer(&mockAnalysisService{}, library)
		require.NoError(t, err)

		_, _, err = server.handleAnalyze(ctx, nil, AnalyzeInput{Text: "x", SourceDocumentID: "missing"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Contains(t, err.Error(), "source document")
	})

	t.Run("degraded analysis names service unavailable", func(t *testing.T) {
		analysis := &mockAnalysisService{err: fmt.Errorf("query: %w", domain.ErrEmbeddingUnavailable)}
		server, err := newTestServer(analysis, &mockLibraryService{})
		require.NoError(t, err)

		_, _, err = server.handleAnalyze(ctx, nil, AnalyzeInput{Text: "x"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
		assert.Contains(t, err.Error(), "service unavailable")
	})

	t.Run("missing index names service unavailable", func(t *testing.T) {
		analysis := &mockAnalysisService{err: domain.ErrVectorIndexUnavailable}
		server, err := newTestServer(analysis, &mockLibraryService{})
		require.NoError(t, err)

		_, _, err = server.handleAnalyze(ctx, nil, AnalyzeInput{Text: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "service unavailable")
		assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
	})
}

func TestServer_handleNavigate(t *testing.T) {
	ctx := context.Background()

	t.Run("returns section with body", func(t *testing.T) {
		library := &mockLibraryService{
			section: &domain.Section{ID: "s-2", DocumentID: "doc-1", Title: "Method", Body: "We measured.", Page: 3, EndPage: 4, WordCount: 2},
		}
		server, err := newTestServer(&mockAnalysisService{}, library)
		require.NoError(t, err)

		_, out, err := server.handleNavigate(ctx, nil, NavigateInput{DocumentID: "doc-1", Page: 3, Text: "measured"})

		require.NoError(t, err)
		assert.Equal(t, "s-2", out.ID)
		assert.Equal(t, "Method", out.Title)
		assert.Equal(t, "We measured.", out.Body)
		assert.Equal(t, 4, out.EndPage)
		assert.Equal(t, domain.NavigationRequest{DocumentID: "doc-1", Page: 3, Text: "measured"}, library.lastNav)
	})

	t.Run("untitled section gets a label", func(t *testing.T) {
		library := &mockLibraryService{section: &domain.Section{ID: "s-1", Order: 1}}
		server, err := newTestServer(&mockAnalysisService{}, library)
		require.NoError(t, err)

		_, out, err := server.handleNavigate(ctx, nil, NavigateInput{DocumentID: "doc-1", SectionID: "s-1"})
		require.NoError(t, err)
		assert.Equal(t, "Section 2", out.Title)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		library := &mockLibraryService{err: domain.ErrNotFound}
		server, err := newTestServer(&mockAnalysisService{}, library)
		require.NoError(t, err)

		_, _, err = server.handleNavigate(ctx, nil, NavigateInput{DocumentID: "doc-1", Page: 99})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NotContains(t, err.Error(), "service unavailable")
	})
}

func TestServer_handleListSections(t *testing.T) {
	ctx := context.Background()

	t.Run("lists sections without bodies", func(t *testing.T) {
		library := &mockLibraryService{
			sections: []domain.Section{
				{ID: "s-0", DocumentID: "doc-1", Title: "Intro", Body: "long text", Page: 1},
				{ID: "s-1", DocumentID: "doc-1", Title: "Results", Body: "more text", Page: 2},
			},
		}
		server, err := newTestServer(&mockAnalysisService{}, library)
		require.NoError(t, err)

		_, out, err := server.handleListSections(ctx, nil, ListSectionsInput{DocumentID: "doc-1"})

		require.NoError(t, err)
		assert.Equal(t, 2, out.Count)
		assert.Equal(t, "Results", out.Sections[1].Title)
		assert.Empty(t, out.Sections[0].Body)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		library := &mockLibraryService{err: errors.New("database error")}
		server, err := newTestServer(&mockAnalysisService{}, library)
		require.NoError(t, err)

		_, _, err = server.handleListSections(ctx, nil, ListSectionsInput{DocumentID: "doc-1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database error")
	})
}

func TestToolError(t *testing.T) {
	plain := errors.New("boom")
	assert.Same(t, plain, toolError(plain))

	already := fmt.Errorf("%w: down", domain.ErrServiceUnavailable)
	assert.Same(t, already, toolError(already))

	wrapped := toolError(domain.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, wrapped, domain.ErrServiceUnavailable)
	assert.ErrorIs(t, wrapped, domain.ErrEmbeddingUnavailable)
}
