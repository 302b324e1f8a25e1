package ws

import (
	"errors"
	"time"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/PostPilot/internal/generation"
)

// Frame types
const (
	TypeGenerateContent  = "generate_content"
	TypeConnectionStatus = "connection_status"
	TypeContentGenerated = "content_generated"
	TypeError            = "error"
)

// Session-level error codes. Generation failures carry generation.Code* values.
const (
	CodeMessageParseError = "MESSAGE_PARSE_ERROR"
	CodeUnknownError      = "UNKNOWN_ERROR"
	CodeRequestInProgress = "REQUEST_IN_PROGRESS"
)

const (
	msgInvalidFormat     = "Invalid message format"
	msgUnexpected        = "An unexpected error occurred"
	msgRequestInProgress = "A generation request is already in progress"
	msgInvalidPrompt     = "Invalid prompt: must be a non-empty string"
)

// timestampLayout matches JavaScript's Date.toISOString
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// GenerateRequest is an inbound generate_content frame. Prompt and Platform
// stay loosely typed so a wrong JSON type is a validation failure rather than
// a parse failure.
type GenerateRequest struct {
	Type     string `json:"type"`
	Prompt   any    `json:"prompt"`
	Platform any    `json:"platform"`
}

// PromptText returns the prompt when it is a string
func (r *GenerateRequest) PromptText() (string, bool) {
	s, ok := r.Prompt.(string)
	return s, ok
}

// PlatformName returns the platform, or "" when it is missing or not a string
func (r *GenerateRequest) PlatformName() string {
	s, _ := r.Platform.(string)
	return s
}

// StatusFrame announces the connection state
type StatusFrame struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// ContentFrame carries a generation result
type ContentFrame struct {
	Type      string             `json:"type"`
	Content   *generation.Result `json:"content"`
	Timestamp string             `json:"timestamp"`
}

// ErrorFrame carries a coded failure
type ErrorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func connectedFrame() StatusFrame {
	return StatusFrame{Type: TypeConnectionStatus, Status: "connected"}
}

func contentFrame(r *generation.Result, now time.Time) ContentFrame {
	return ContentFrame{
		Type:      TypeContentGenerated,
		Content:   r,
		Timestamp: now.UTC().Format(timestampLayout),
	}
}

func errorFrame(code, message string) ErrorFrame {
	return ErrorFrame{Type: TypeError, Code: code, Message: message}
}

var errNullFrame = errors.New("frame is null")

// decodeRequest parses an inbound frame. Invalid JSON and a bare null are
// errors. Any other value decodes; arrays, scalars and objects without a
// string type come back with an empty Type and are ignored by the session.
func decodeRequest(data []byte) (*GenerateRequest, error) {
	var raw any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errNullFrame
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return &GenerateRequest{}, nil
	}
	req := &GenerateRequest{Prompt: obj["prompt"], Platform: obj["platform"]}
	req.Type, _ = obj["type"].(string)
	return req, nil
}

func encodeFrame(v any) ([]byte, error) {
	return sonic.Marshal(v)
}
