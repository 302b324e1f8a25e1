// Package ws serves the realtime content generation socket.
//
// The handshake is authenticated before the upgrade; a rejected handshake gets
// a plain 401 and never sees a frame. Each accepted socket becomes a Session
// bound to one identity for its lifetime.
//
// Message Types (Client → Server):
//   - generate_content: {type, prompt, platform}
//
// Message Types (Server → Client):
//   - connection_status: sent once, right after the upgrade
//   - content_generated: {type, content, timestamp}
//   - error: {type, code, message}
//
// A session is Idle or AwaitingGenerationResult. Generation runs off the
// read loop so pings and close frames are still serviced; a second request
// while awaiting is answered with REQUEST_IN_PROGRESS. Closing the socket
// cancels the generation in flight.
//
// Example Usage:
//
//	handler := ws.NewHandler(authenticator, generator, ws.DefaultOptions(), logger, metrics)
//	router.GET("/ws", handler.HandleConnection)
package ws
