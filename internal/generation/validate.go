package generation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// ParseResult decodes a provider reply and validates every field. The
// result is either fully valid or a VALIDATION_ERROR; malformed JSON is
// returned as a plain decode error.
func ParseResult(raw string) (*Result, error) {
	var decoded interface{}
	if err := sonic.UnmarshalString(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}

	fields, _ := decoded.(map[string]interface{})
	metrics, _ := fields["quality_metrics"].(map[string]interface{})

	content, err := validateString(fields, "content")
	if err != nil {
		return nil, err
	}
	hashtags, err := validateHashtags(fields["hashtags"])
	if err != nil {
		return nil, err
	}
	engagement, err := validateNumber(fields, "engagement_prediction")
	if err != nil {
		return nil, err
	}
	tone, err := validateString(fields, "tone")
	if err != nil {
		return nil, err
	}

	var qm QualityMetrics
	for _, m := range []struct {
		field string
		dst   *float64
	}{
		{"clarity", &qm.Clarity},
		{"relevance", &qm.Relevance},
		{"originality", &qm.Originality},
		{"engagement_potential", &qm.EngagementPotential},
	} {
		if *m.dst, err = validateNumber(metrics, m.field); err != nil {
			return nil, err
		}
	}

	return &Result{
		Content:              content,
		Hashtags:             hashtags,
		EngagementPrediction: engagement,
		Tone:                 tone,
		QualityMetrics:       qm,
	}, nil
}

func validateString(fields map[string]interface{}, field string) (string, error) {
	s, ok := fields[field].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", validationError("Invalid %s: must be a non-empty string", field)
	}
	return strings.TrimSpace(s), nil
}

func validateHashtags(v interface{}) ([]string, error) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, validationError("Invalid hashtags: must be an array")
	}

	tags := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		s = strings.TrimSpace(s)
		if !ok || s == "" {
			return nil, validationError("Invalid hashtag: each hashtag must be a non-empty string")
		}
		if !strings.HasPrefix(s, "#") {
			s = "#" + s
		}
		tags = append(tags, s)
	}
	return tags, nil
}

// validateNumber coerces fields[field] the way a JSON consumer with loose
// numeric typing would: numeric strings parse, booleans and null become
// 1/0, and anything missing or structured is rejected.
func validateNumber(fields map[string]interface{}, field string) (float64, error) {
	v, present := fields[field]
	n, ok := coerceNumber(v, present)
	if !ok || math.IsNaN(n) || n < 0 || n > 100 {
		return 0, validationError("Invalid %s: must be a number between 0 and 100", field)
	}
	return n, nil
}

func coerceNumber(v interface{}, present bool) (float64, bool) {
	if !present {
		return 0, false
	}
	switch n := v.(type) {
	case nil:
		return 0, true
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
