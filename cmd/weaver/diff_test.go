package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrewh/weaver/internal/registry"
	"github.com/andrewh/weaver/internal/semconv"
)

func TestDiffRegistriesDetectsAddedRemovedChanged(t *testing.T) {
	before := &registry.ResolvedRegistry{
		Catalog: []registry.ResolvedAttribute{
			{Name: "http.request.method", Type: semconv.AttributeType{Name: "string"}, Stability: semconv.StabilityStable},
			{Name: "http.response.status_code", Type: semconv.AttributeType{Name: "int"}, Stability: semconv.StabilityStable},
		},
		Groups: []registry.ResolvedGroup{{ID: "registry.http"}},
	}
	after := &registry.ResolvedRegistry{
		Catalog: []registry.ResolvedAttribute{
			{Name: "http.request.method", Type: semconv.AttributeType{Name: "string"}, Stability: semconv.StabilityDevelopment},
			{Name: "http.request.body.size", Type: semconv.AttributeType{Name: "int"}, Stability: semconv.StabilityStable},
		},
		Groups: []registry.ResolvedGroup{{ID: "registry.http"}, {ID: "registry.http.body"}},
	}

	d := diffRegistries(before, after)
	assert.ElementsMatch(t, []string{"http.request.body.size"}, d.AddedAttributes)
	assert.ElementsMatch(t, []string{"http.response.status_code"}, d.RemovedAttributes)
	assert.ElementsMatch(t, []string{"http.request.method"}, d.ChangedAttributes)
	assert.ElementsMatch(t, []string{"registry.http.body"}, d.AddedGroups)
	assert.Empty(t, d.RemovedGroups)
}
