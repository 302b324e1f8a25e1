// Package generation turns a prompt and a target platform into a validated
// social media post by calling a chat completions provider.
//
// The Client builds a platform specific instruction, asks the provider for
// a JSON object, and validates every field of the reply before returning a
// Result. Rate limited calls are retried with exponential backoff (three
// attempts by default, waiting 1s then 2s); any other failure is returned
// at once. All failures surface as *Error with one of the codes
// EMPTY_RESPONSE, VALIDATION_ERROR, RATE_LIMIT, AUTH_ERROR or API_ERROR.
//
// Example Usage:
//
//	client := generation.NewClient(generation.Config{
//		Completer: generation.NewOpenAI(generation.OpenAIConfig{APIKey: key}),
//		Logger:    logger,
//	})
//	result, err := client.Generate(ctx, "launch day for our app", "twitter")
package generation
