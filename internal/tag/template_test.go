package tag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTemplateIsValid(t *testing.T) {
	assert.NoError(t, DefaultTemplate().Validate())
}

func TestParseTemplateOverridesDefaults(t *testing.T) {
	tpl, err := ParseTemplate([]byte(`
name: conference
page_width: 90
title: "DevConf 2024"
font_style: ""
`))
	require.NoError(t, err)

	assert.Equal(t, "conference", tpl.Name)
	assert.Equal(t, 90.0, tpl.PageWidth)
	assert.Equal(t, 60.0, tpl.PageHeight)
	assert.Equal(t, "DejaVu", tpl.FontFamily)
	assert.Equal(t, "", tpl.FontStyle)
	assert.Equal(t, "DevConf 2024", tpl.Title)
	assert.True(t, tpl.Border)
}

func TestParseTemplateMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad yaml", "page_width: [1, 2"},
		{"zero width", "page_width: 0"},
		{"negative height", "page_height: -5"},
		{"unknown font", "font_family: Comic Sans"},
		{"unknown style", "font_style: X"},
		{"core font", "font_family: Helvetica"},
		{"italic not embedded", "font_style: I"},
		{"title without size", "title: Hello\ntitle_font_size: 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTemplate([]byte(tt.data))
			assert.ErrorIs(t, err, ErrMalformedTemplate)
		})
	}
}

func TestLoadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: file\nborder: false\n"), 0o644))

	tpl, err := LoadTemplate(path)
	require.NoError(t, err)
	assert.Equal(t, "file", tpl.Name)
	assert.False(t, tpl.Border)

	_, err = LoadTemplate(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
