package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validReply = `{
	"content": "  Ship it.  ",
	"hashtags": ["launch", "#buildinpublic", "  devlife "],
	"engagement_prediction": 87,
	"tone": " upbeat ",
	"quality_metrics": {"clarity": 90, "relevance": "75", "originality": 0, "engagement_potential": 100}
}`

func TestParseResultNormalizes(t *testing.T) {
	res, err := ParseResult(validReply)
	require.NoError(t, err)

	assert.Equal(t, "Ship it.", res.Content)
	assert.Equal(t, []string{"#launch", "#buildinpublic", "#devlife"}, res.Hashtags)
	assert.Equal(t, 87.0, res.EngagementPrediction)
	assert.Equal(t, "upbeat", res.Tone)
	assert.Equal(t, QualityMetrics{Clarity: 90, Relevance: 75, Originality: 0, EngagementPotential: 100}, res.QualityMetrics)
}

func TestParseResultEmptyHashtags(t *testing.T) {
	res, err := ParseResult(`{"content":"x","hashtags":[],"engagement_prediction":1,"tone":"t",
		"quality_metrics":{"clarity":1,"relevance":1,"originality":1,"engagement_potential":1}}`)
	require.NoError(t, err)
	assert.Empty(t, res.Hashtags)
}

func TestParseResultValidation(t *testing.T) {
	metrics := `"quality_metrics":{"clarity":1,"relevance":1,"originality":1,"engagement_potential":1}`

	tests := []struct {
		name    string
		reply   string
		wantMsg string
	}{
		{
			name:    "missing content",
			reply:   `{"hashtags":[],"engagement_prediction":1,"tone":"t",` + metrics + `}`,
			wantMsg: "Invalid content: must be a non-empty string",
		},
		{
			name:    "blank content",
			reply:   `{"content":"   ","hashtags":[],"engagement_prediction":1,"tone":"t",` + metrics + `}`,
			wantMsg: "Invalid content: must be a non-empty string",
		},
		{
			name:    "hashtags not an array",
			reply:   `{"content":"c","hashtags":"#a #b","engagement_prediction":1,"tone":"t",` + metrics + `}`,
			wantMsg: "Invalid hashtags: must be an array",
		},
		{
			name:    "non string hashtag",
			reply:   `{"content":"c","hashtags":["ok",7],"engagement_prediction":1,"tone":"t",` + metrics + `}`,
			wantMsg: "Invalid hashtag: each hashtag must be a non-empty string",
		},
		{
			name:    "blank hashtag",
			reply:   `{"content":"c","hashtags":["ok"," "],"engagement_prediction":1,"tone":"t",` + metrics + `}`,
			wantMsg: "Invalid hashtag: each hashtag must be a non-empty string",
		},
		{
			name:    "engagement above range",
			reply:   `{"content":"c","hashtags":[],"engagement_prediction":101,"tone":"t",` + metrics + `}`,
			wantMsg: "Invalid engagement_prediction: must be a number between 0 and 100",
		},
		{
			name:    "engagement missing",
			reply:   `{"content":"c","hashtags":[],"tone":"t",` + metrics + `}`,
			wantMsg: "Invalid engagement_prediction: must be a number between 0 and 100",
		},
		{
			name:    "engagement not numeric",
			reply:   `{"content":"c","hashtags":[],"engagement_prediction":"high","tone":"t",` + metrics + `}`,
			wantMsg: "Invalid engagement_prediction: must be a number between 0 and 100",
		},
		{
			name:    "missing tone",
			reply:   `{"content":"c","hashtags":[],"engagement_prediction":1,` + metrics + `}`,
			wantMsg: "Invalid tone: must be a non-empty string",
		},
		{
			name:    "missing quality metrics",
			reply:   `{"content":"c","hashtags":[],"engagement_prediction":1,"tone":"t"}`,
			wantMsg: "Invalid clarity: must be a number between 0 and 100",
		},
		{
			name: "negative originality",
			reply: `{"content":"c","hashtags":[],"engagement_prediction":1,"tone":"t",
				"quality_metrics":{"clarity":1,"relevance":1,"originality":-1,"engagement_potential":1}}`,
			wantMsg: "Invalid originality: must be a number between 0 and 100",
		},
		{
			name: "object metric",
			reply: `{"content":"c","hashtags":[],"engagement_prediction":1,"tone":"t",
				"quality_metrics":{"clarity":1,"relevance":1,"originality":1,"engagement_potential":{"v":1}}}`,
			wantMsg: "Invalid engagement_potential: must be a number between 0 and 100",
		},
		{
			name:    "array instead of object",
			reply:   `[1,2,3]`,
			wantMsg: "Invalid content: must be a non-empty string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseResult(tt.reply)
			require.Error(t, err)
			assert.Nil(t, res)

			gerr, ok := AsError(err)
			require.True(t, ok, "expected *Error, got %T", err)
			assert.Equal(t, CodeValidationError, gerr.Code)
			assert.Equal(t, tt.wantMsg, gerr.Message)
		})
	}
}

func TestParseResultMalformedJSON(t *testing.T) {
	_, err := ParseResult(`{"content": "unterminated`)
	require.Error(t, err)

	_, isGenerationErr := AsError(err)
	assert.False(t, isGenerationErr)
}

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		present bool
		want    float64
		ok      bool
	}{
		{"float", 42.5, true, 42.5, true},
		{"numeric string", " 12 ", true, 12, true},
		{"empty string", "", true, 0, true},
		{"true", true, true, 1, true},
		{"false", false, true, 0, true},
		{"null", nil, true, 0, true},
		{"missing", nil, false, 0, false},
		{"word", "lots", true, 0, false},
		{"array", []interface{}{1.0}, true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coerceNumber(tt.value, tt.present)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
