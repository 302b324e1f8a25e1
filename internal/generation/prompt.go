package generation

import "fmt"

const responseShape = `{
  "content": "the generated post text",
  "hashtags": ["relevant", "trending", "hashtags"],
  "engagement_prediction": number between 0-100,
  "tone": "descriptive tone of the content",
  "quality_metrics": {
    "clarity": number between 0-100,
    "relevance": number between 0-100,
    "originality": number between 0-100,
    "engagement_potential": number between 0-100
  }
}`

func systemPrompt(platform string) string {
	return fmt.Sprintf("You are an expert %s content strategist with deep understanding of the platform's best practices, "+
		"audience behavior, and content performance metrics. Your goal is to create highly engaging, platform-optimized "+
		"content that drives meaningful engagement while maintaining authenticity and brand voice.", platform)
}

func userPrompt(platform, guideline, prompt string) string {
	return fmt.Sprintf(`Generate highly engaging %s content optimized for maximum impact and authenticity. 

Platform-specific considerations:
%s

Original prompt: %s

Additional requirements:
- Ensure the content is authentic, engaging, and platform-appropriate
- Include trending but relevant hashtags
- Maintain brand voice consistency
- Focus on creating shareable, valuable content

Return response in JSON format with the following structure:
%s`, platform, guideline, prompt, responseShape)
}

// BuildRequest assembles the chat request for one generation.
func BuildRequest(model, platform, prompt string, g Guidelines) ChatRequest {
	return ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt(platform)},
			{Role: RoleUser, Content: userPrompt(platform, g.For(platform), prompt)},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}
}
