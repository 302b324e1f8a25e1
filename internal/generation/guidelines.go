package generation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// GenericGuideline applies to platforms without a dedicated entry.
const GenericGuideline = "Focus on platform-appropriate content length, tone, and engagement strategies"

// Guidelines maps a lowercase platform name to its instruction block.
type Guidelines map[string]string

// DefaultGuidelines returns the built-in guidance for the four platforms.
func DefaultGuidelines() Guidelines {
	return Guidelines{
		PlatformTwitter: `- Keep content concise and impactful within character limits
- Use 1-2 relevant hashtags maximum
- Focus on timely, conversational content
- Consider thread potential for longer messages`,

		PlatformInstagram: `- Create visually descriptive content
- Use 5-10 strategic hashtags
- Focus on storytelling elements
- Include calls to action
- Consider carousel potential`,

		PlatformLinkedIn: `- Maintain professional tone
- Focus on industry insights and expertise
- Use 3-5 relevant hashtags
- Include data points when applicable
- Consider longer-form content`,

		PlatformFacebook: `- Focus on community engagement
- Keep content conversational but informative
- Use 1-3 hashtags maximum
- Include questions or calls for interaction
- Consider multimedia potential`,
	}
}

// For returns the guidance for platform, case-insensitively, falling back
// to GenericGuideline.
func (g Guidelines) For(platform string) string {
	if text, ok := g[strings.ToLower(platform)]; ok && strings.TrimSpace(text) != "" {
		return text
	}
	return GenericGuideline
}

// LoadGuidelines reads overrides from a YAML (.yaml, .yml) or TOML (.toml)
// file and merges them over the defaults. An empty path returns the
// defaults unchanged.
func LoadGuidelines(path string) (Guidelines, error) {
	g := DefaultGuidelines()
	if path == "" {
		return g, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read guidelines: %w", err)
	}

	overrides, err := ParseGuidelines(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("parse guidelines %s: %w", filepath.Base(path), err)
	}
	for platform, text := range overrides {
		g[platform] = text
	}
	return g, nil
}

// ParseGuidelines decodes a platform to guidance table. ext selects the
// format and includes the leading dot.
func ParseGuidelines(ext string, data []byte) (Guidelines, error) {
	raw := map[string]string{}

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported guidelines format %q", ext)
	}

	g := make(Guidelines, len(raw))
	for platform, text := range raw {
		g[strings.ToLower(strings.TrimSpace(platform))] = strings.TrimSpace(text)
	}
	return g, nil
}
