package auth

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PostPilot/internal/infrastructure/monitoring"
)

// Rejection reasons
const (
	ReasonNoCookie       = "no cookie"
	ReasonInvalidSession = "invalid session"
	ReasonNoUser         = "no user in session"
)

// Rejection describes why a request was refused. Status is always 401.
type Rejection struct {
	Status int
	Reason string
}

func reject(reason string) *Rejection {
	return &Rejection{Status: http.StatusUnauthorized, Reason: reason}
}

// AuthenticatorConfig wires an Authenticator
type AuthenticatorConfig struct {
	CookieName string
	Secret     string
	TTL        time.Duration
	Secure     bool
	Sessions   SessionStore
	Logger     *logging.Logger
	Metrics    *monitoring.Metrics
}

// Authenticator resolves a request's session cookie into an Identity
type Authenticator struct {
	cookieName string
	ttl        time.Duration
	secure     bool
	signer     *Signer
	sessions   SessionStore
	logger     *logging.Logger
	metrics    *monitoring.Metrics
	now        func() time.Time
}

// NewAuthenticator creates an authenticator
func NewAuthenticator(cfg AuthenticatorConfig) *Authenticator {
	if cfg.CookieName == "" {
		cfg.CookieName = "connect.sid"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	return &Authenticator{
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
		secure:     cfg.Secure,
		signer:     NewSigner(cfg.Secret),
		sessions:   cfg.Sessions,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		now:        time.Now,
	}
}

// Authenticate checks the session cookie on r. It never writes to the response.
func (a *Authenticator) Authenticate(r *http.Request) (*Identity, *Rejection) {
	if r.Header.Get("Cookie") == "" {
		return nil, a.rejected(ReasonNoCookie)
	}
	cookie, err := r.Cookie(a.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, a.rejected(ReasonNoCookie)
	}

	sessionID, ok := a.signer.Unsign(cookie.Value)
	if !ok {
		return nil, a.rejected(ReasonInvalidSession)
	}

	sess, err := a.sessions.Get(r.Context(), sessionID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			a.logger.Warn("Session lookup failed", zap.Error(err))
		}
		return nil, a.rejected(ReasonInvalidSession)
	}
	if sess.Expired(a.now()) {
		return nil, a.rejected(ReasonInvalidSession)
	}
	if sess.UserID == 0 {
		return nil, a.rejected(ReasonNoUser)
	}

	return &Identity{
		UserID:    sess.UserID,
		Username:  sess.Username,
		SessionID: sess.ID,
	}, nil
}

func (a *Authenticator) rejected(reason string) *Rejection {
	if a.metrics != nil {
		a.metrics.RecordAuthRejection(reason)
	}
	a.logger.Debug("Authentication rejected", zap.String("reason", reason))
	return reject(reason)
}

// Cookie returns the signed session cookie for sessionID
func (a *Authenticator) Cookie(sessionID string) *http.Cookie {
	return &http.Cookie{
		Name:     a.cookieName,
		Value:    a.signer.Sign(sessionID),
		Path:     "/",
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie returns a cookie that removes the session cookie
func (a *Authenticator) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// CookieName returns the session cookie name
func (a *Authenticator) CookieName() string { return a.cookieName }

// Sessions returns the backing store
func (a *Authenticator) Sessions() SessionStore { return a.sessions }

// TTL returns the session lifetime
func (a *Authenticator) TTL() time.Duration { return a.ttl }
