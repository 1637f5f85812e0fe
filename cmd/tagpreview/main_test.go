package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWritesPDF(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, run([]string{"--name", "  Carol ", "--out", dir}))

	data, err := os.ReadFile(filepath.Join(dir, "carol_tag.pdf"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}

func TestRunRejectsBlankName(t *testing.T) {
	err := run([]string{"--name", "   ", "--out", t.TempDir()})
	assert.ErrorContains(t, err, "invalid or empty name provided")
}

func TestRunMalformedTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("page_width: 0\n"), 0o644))

	err := run([]string{"-n", "Carol", "-t", path, "-o", dir})
	assert.ErrorContains(t, err, "template malformed")
}
