package generation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuidelinesFor(t *testing.T) {
	g := DefaultGuidelines()

	assert.Contains(t, g.For("twitter"), "1-2 relevant hashtags")
	assert.Contains(t, g.For("INSTAGRAM"), "5-10 strategic hashtags")
	assert.Contains(t, g.For("LinkedIn"), "professional tone")
	assert.Contains(t, g.For("facebook"), "community engagement")
	assert.Equal(t, GenericGuideline, g.For("tiktok"))
	assert.Equal(t, GenericGuideline, g.For(""))
}

func TestParseGuidelines(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{
			name: "yaml",
			ext:  ".yaml",
			data: "Twitter: |\n  - Be brief\nthreads: Keep it civil\n",
		},
		{
			name: "toml",
			ext:  ".toml",
			data: "Twitter = \"- Be brief\"\nthreads = \"Keep it civil\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseGuidelines(tt.ext, []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, "- Be brief", g["twitter"])
			assert.Equal(t, "Keep it civil", g.For("threads"))
		})
	}

	_, err := ParseGuidelines(".ini", []byte("x=1"))
	assert.Error(t, err)
}

func TestLoadGuidelinesMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "guidelines.yml")
	require.NoError(t, os.WriteFile(path, []byte("linkedin: \"- Lead with a number\"\n"), 0o600))

	g, err := LoadGuidelines(path)
	require.NoError(t, err)

	assert.Equal(t, "- Lead with a number", g.For("linkedin"))
	assert.Contains(t, g.For("twitter"), "1-2 relevant hashtags")

	defaults, err := LoadGuidelines("")
	require.NoError(t, err)
	assert.Equal(t, DefaultGuidelines(), defaults)

	_, err = LoadGuidelines(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}
