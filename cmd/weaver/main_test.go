package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmdWiresRegistrySubcommands(t *testing.T) {
	root := rootCmd()
	reg, _, err := root.Find([]string{"registry"})
	assert.NoError(t, err)
	assert.NotNil(t, reg)

	names := make(map[string]bool)
	for _, c := range reg.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{
		"check", "resolve", "generate", "stats", "search",
		"diff", "update-markdown", "json-schema", "emit", "live-check",
	} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestVersionCmd(t *testing.T) {
	root := rootCmd()
	root.SetArgs([]string{"version"})
	assert.NoError(t, root.Execute())
}
