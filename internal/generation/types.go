package generation

import "strings"

// Supported platforms. Any other value gets generic guidance.
const (
	PlatformTwitter   = "twitter"
	PlatformInstagram = "instagram"
	PlatformLinkedIn  = "linkedin"
	PlatformFacebook  = "facebook"
)

// Platforms lists the platforms with dedicated guidance.
var Platforms = []string{PlatformTwitter, PlatformInstagram, PlatformLinkedIn, PlatformFacebook}

// IsKnownPlatform reports whether platform has dedicated guidance.
func IsKnownPlatform(platform string) bool {
	p := strings.ToLower(platform)
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// Result is a validated, normalized generation. Every number lies in
// [0,100] and every hashtag starts with "#".
type Result struct {
	Content              string         `json:"content"`
	Hashtags             []string       `json:"hashtags"`
	EngagementPrediction float64        `json:"engagement_prediction"`
	Tone                 string         `json:"tone"`
	QualityMetrics       QualityMetrics `json:"quality_metrics"`
}

// QualityMetrics scores a generation on four axes, each in [0,100].
type QualityMetrics struct {
	Clarity             float64 `json:"clarity"`
	Relevance           float64 `json:"relevance"`
	Originality         float64 `json:"originality"`
	EngagementPotential float64 `json:"engagement_potential"`
}
