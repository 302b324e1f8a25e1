package client

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// Frame types on the generation socket
const (
	TypeGenerateContent  = "generate_content"
	TypeConnectionStatus = "connection_status"
	TypeContentGenerated = "content_generated"
	TypeError            = "error"
)

var (
	// ErrNotConnected is returned when no socket is open
	ErrNotConnected = errors.New("WebSocket is not connected")
	// ErrRequestInFlight is returned when a generation is already outstanding
	ErrRequestInFlight = errors.New("a generation request is already in flight")
	// ErrTimeout is returned when no reply arrives within the request timeout
	ErrTimeout = errors.New("Request timed out")
	// ErrConnectionLost is returned when the socket drops with a request outstanding
	ErrConnectionLost = errors.New("connection lost")
	// ErrClosed is returned after Close
	ErrClosed = errors.New("broker closed")
)

// ServerError is an error frame sent by the server
type ServerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ServerError) Error() string {
	return e.Message
}

// HandshakeError is a refused upgrade, typically a 401 for a missing or stale session
type HandshakeError struct {
	Status int
	Err    error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("handshake rejected with status %d: %v", e.Status, e.Err)
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// Result is a generated post
type Result struct {
	Content              string         `json:"content"`
	Hashtags             []string       `json:"hashtags"`
	EngagementPrediction float64        `json:"engagement_prediction"`
	Tone                 string         `json:"tone"`
	QualityMetrics       QualityMetrics `json:"quality_metrics"`
}

// QualityMetrics scores a generation, each axis in [0,100]
type QualityMetrics struct {
	Clarity             float64 `json:"clarity"`
	Relevance           float64 `json:"relevance"`
	Originality         float64 `json:"originality"`
	EngagementPotential float64 `json:"engagement_potential"`
}

type generateRequest struct {
	Type     string `json:"type"`
	Prompt   string `json:"prompt"`
	Platform string `json:"platform"`
}

// inbound covers every server frame; unused fields stay zero
type inbound struct {
	Type      string  `json:"type"`
	Status    string  `json:"status,omitempty"`
	Content   *Result `json:"content,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
	Code      string  `json:"code,omitempty"`
	Message   string  `json:"message,omitempty"`
}

func encodeRequest(prompt, platform string) ([]byte, error) {
	return sonic.Marshal(generateRequest{Type: TypeGenerateContent, Prompt: prompt, Platform: platform})
}

func decodeFrame(data []byte) (*inbound, error) {
	var f inbound
	if err := sonic.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Type == "" {
		return nil, errors.New("frame has no type")
	}
	return &f, nil
}
