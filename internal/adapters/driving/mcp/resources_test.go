package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-lens/internal/core/domain"
)

func TestSectionsDocumentID(t *testing.T) {
	tests := map[string]string{
		"lens://documents/doc-456/sections": "doc-456",
		"file://documents/doc-456/sections": "",
		"lens://documents/doc-456":          "",
		"lens://documents/a/b/sections":     "",
		"lens://documents//sections":        "",
		"":                                  "",
	}
	for uri, want := range tests {
		id, ok := sectionsDocumentID(uri)
		assert.Equal(t, want, id, uri)
		assert.Equal(t, want != "", ok, uri)
	}
}

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists documents as JSON", func(t *testing.T) {
		library := &mockLibraryService{
			documents: []domain.Document{
				{
					ID:           "doc-1",
					Name:         "report.pdf",
					Category:     domain.CategoryKnowledgeBase,
					SectionCount: 4,
					UploadedAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
					IndexedAt:    time.Date(2024, 3, 1, 10, 0, 1, 0, time.UTC),
				},
				{ID: "doc-2", Title: "Notes", Category: domain.CategoryReading},
			},
		}
		server, err := newTestServer(&mockAnalysisService{}, library)
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("lens://documents"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var infos []documentInfo
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &infos))
		require.Len(t, infos, 2)
		assert.Equal(t, "report.pdf", infos[0].Name)
		assert.True(t, infos[0].Indexed)
		assert.Equal(t, "2024-03-01T10:00:00Z", infos[0].Uploaded)
		assert.Equal(t, "Notes", infos[1].Name)
		assert.False(t, infos[1].Indexed)
		assert.Equal(t, domain.CategoryReading, infos[1].Category)
	})

	t.Run("empty library", func(t *testing.T) {
		server, err := newTestServer(&mockAnalysisService{}, &mockLibraryService{})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("lens://documents"))
		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		library := &mockLibraryService{err: errors.New("database error")}
		server, err := newTestServer(&mockAnalysisService{}, library)
		require.NoError(t, err)

		_, err = server.handleDocumentsResource(ctx, makeReadResourceRequest("lens://documents"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})
}

func TestServer_handleSectionsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns sections", func(t *testing.T) {
		library := &mockLibraryService{
			sections: []domain.Section{{ID: "s-0", DocumentID: "doc-1", Title: "Intro", Page: 1, WordCount: 30}},
		}
		server, err := newTestServer(&mockAnalysisService{}, library)
		require.NoError(t, err)

		result, err := server.handleSectionsResource(ctx, makeReadResourceRequest("lens://documents/doc-1/sections"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, `"id": "s-0"`)
		assert.Contains(t, result.Contents[0].Text, `"word_count": 30`)
	})

	t.Run("malformed URI is not found", func(t *testing.T) {
		server, err := newTestServer(&mockAnalysisService{}, &mockLibraryService{})
		require.NoError(t, err)

		_, err = server.handleSectionsResource(ctx, makeReadResourceRequest("lens://documents/"))
		require.Error(t, err)
	})

	t.Run("unknown document is not found", func(t *testing.T) {
		library := &mockLibraryService{err: domain.ErrNotFound}
		server, err := newTestServer(&mockAnalysisService{}, library)
		require.NoError(t, err)

		_, err = server.handleSectionsResource(ctx, makeReadResourceRequest("lens://documents/doc-9/sections"))
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "listing sections")
	})

	t.Run("returns error on failure", func(t *testing.T) {
		library := &mockLibraryService{err: errors.New("database error")}
		server, err := newTestServer(&mockAnalysisService{}, library)
		require.NoError(t, err)

		_, err = server.handleSectionsResource(ctx, makeReadResourceRequest("lens://documents/doc-1/sections"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing sections")
	})
}

func TestServer_handleStatsResource(t *testing.T) {
	library := &mockLibraryService{stats: domain.LibraryStats{Documents: 3, Sections: 41, Dimensions: 512}}
	server, err := newTestServer(&mockAnalysisService{}, library)
	require.NoError(t, err)

	result, err := server.handleStatsResource(context.Background(), makeReadResourceRequest("lens://stats"))
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "lens://stats", result.Contents[0].URI)

	var got domain.LibraryStats
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))
	assert.Equal(t, library.stats, got)
}
