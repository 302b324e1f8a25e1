/*
Package auth resolves session cookies into identities and manages accounts.

The session cookie carries a signed session id (s:<id>.<mac>). Authenticator
verifies the signature, loads the session from a SessionStore and returns an
Identity, or a Rejection with one of three reasons:

	no cookie           the request has no session cookie
	invalid session     bad signature, unknown or expired session, store error
	no user in session  the session exists but is not bound to a user

Authenticate never touches the response, so the WebSocket handler can refuse a
handshake with a plain 401 before any upgrade happens.

Sessions live in Redis (RedisStore) when REDIS_URL is set and in process
(MemoryStore) otherwise. Service hashes passwords with bcrypt and opens a
session on register and login.
*/
package auth
