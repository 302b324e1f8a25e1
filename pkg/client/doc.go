// Package client is the Go client for the PostPilot backend.
//
// API logs in over REST and keeps the session cookie in a jar. Broker shares
// that jar to open the generation socket:
//
//	api, _ := client.NewAPI("http://localhost:8000", 0)
//	api.Login(ctx, "alice", "secret")
//	broker := client.NewBroker(client.Config{URL: api.SocketURL(), Jar: api.Jar()})
//	if err := broker.Connect(ctx); err != nil { ... }
//	defer broker.Close()
//	result, err := broker.GenerateContent(ctx, "launch day", "twitter")
//
// The broker allows one request in flight. Each request settles exactly once:
// on content_generated, on an error frame (*ServerError), on the 30s timeout
// (ErrTimeout), or when the socket drops (ErrConnectionLost). Replies that
// arrive after settlement are dropped. A close with any code other than 1000
// is redialled after ReconnectDelay.
package client
