package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewh/weaver/internal/registry"
	"github.com/andrewh/weaver/internal/semconv"
)

func testRegistryForMarkdown() *registry.ResolvedRegistry {
	return &registry.ResolvedRegistry{
		Catalog: []registry.ResolvedAttribute{
			{Name: "http.request.method", Type: semconv.AttributeType{Name: "string"}, Brief: "HTTP method", Stability: semconv.StabilityStable},
		},
		Groups: []registry.ResolvedGroup{
			{ID: "registry.http", Attributes: []registry.AttributeRef{0}},
		},
	}
}

func TestUpdateMarkdownRewritesBlock(t *testing.T) {
	content := "# Doc\n\n<!-- semconv registry.http -->\nstale content\n<!-- endsemconv -->\n"
	updated, changed, err := updateMarkdown(testRegistryForMarkdown(), content)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, updated, "http.request.method")
	assert.Contains(t, updated, "<!-- semconv registry.http -->")
	assert.Contains(t, updated, "<!-- endsemconv -->")
}

func TestUpdateMarkdownNoChangeWhenAlreadyCurrent(t *testing.T) {
	reg := testRegistryForMarkdown()
	table, err := renderAttributeTable(reg, "registry.http")
	require.NoError(t, err)

	content := "<!-- semconv registry.http -->" + table + "<!-- endsemconv -->"
	_, changed, err := updateMarkdown(reg, content)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestUpdateMarkdownUnknownGroupErrors(t *testing.T) {
	content := "<!-- semconv registry.unknown -->\n<!-- endsemconv -->"
	_, _, err := updateMarkdown(testRegistryForMarkdown(), content)
	assert.Error(t, err)
}
