package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrewh/weaver/internal/registry"
	"github.com/andrewh/weaver/internal/semconv"
)

func TestExampleValuePrefersDeclaredExample(t *testing.T) {
	attr := registry.ResolvedAttribute{
		Type:     semconv.AttributeType{Name: "string"},
		Examples: semconv.Examples{Values: []any{"GET"}},
	}
	assert.Equal(t, "GET", exampleValue(attr))
}

func TestExampleValueFallsBackByType(t *testing.T) {
	assert.Equal(t, 1, exampleValue(registry.ResolvedAttribute{Type: semconv.AttributeType{Name: "int"}}))
	assert.Equal(t, 1.0, exampleValue(registry.ResolvedAttribute{Type: semconv.AttributeType{Name: "double"}}))
	assert.Equal(t, true, exampleValue(registry.ResolvedAttribute{Type: semconv.AttributeType{Name: "boolean"}}))
	assert.Equal(t, "example-value", exampleValue(registry.ResolvedAttribute{Type: semconv.AttributeType{Name: "string"}}))
}

func TestExampleValueEnumUsesFirstMember(t *testing.T) {
	attr := registry.ResolvedAttribute{
		Type: semconv.AttributeType{
			Kind:    semconv.TypeEnum,
			Members: []semconv.EnumMember{{ID: "get", Value: "GET"}},
		},
	}
	assert.Equal(t, "GET", exampleValue(attr))
}
