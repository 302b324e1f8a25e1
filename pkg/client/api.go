package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

// APIError is a non-2xx REST reply
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// User is the account returned by login and register
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// HistoryEntry is a saved generation
type HistoryEntry struct {
	ID                   int64    `json:"id,omitempty"`
	Content              string   `json:"content"`
	Platform             string   `json:"platform"`
	Hashtags             []string `json:"hashtags"`
	EngagementPrediction *float64 `json:"engagement_prediction,omitempty"`
	Tone                 string   `json:"tone,omitempty"`
	GeneratedAt          string   `json:"generated_at,omitempty"`
}

// API is a REST client that keeps the session cookie in a jar shared with
// the Broker.
type API struct {
	base  *url.URL
	jar   http.CookieJar
	resty *resty.Client
}

// NewAPI creates a REST client for baseURL, e.g. http://localhost:8000
func NewAPI(baseURL string, timeout time.Duration) (*API, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https, got %q", base.Scheme)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	r := resty.New().
		SetBaseURL(base.String()).
		SetTimeout(timeout).
		SetCookieJar(jar).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "postctl/1.0")
	r.JSONMarshal = sonic.Marshal
	r.JSONUnmarshal = sonic.Unmarshal

	return &API{base: base, jar: jar, resty: r}, nil
}

// Jar returns the cookie jar holding the session cookie
func (a *API) Jar() http.CookieJar {
	return a.jar
}

// SocketURL derives the generation socket URL from the base URL
func (a *API) SocketURL() string {
	u := *a.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String()
}

// Register creates an account and stores its session cookie
func (a *API) Register(ctx context.Context, username, password, email string) (*User, error) {
	var user User
	body := map[string]string{"username": username, "password": password, "email": email}
	if err := a.do(ctx, http.MethodPost, "/api/register", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and stores the session cookie
func (a *API) Login(ctx context.Context, username, password string) (*User, error) {
	var user User
	body := map[string]string{"username": username, "password": password}
	if err := a.do(ctx, http.MethodPost, "/api/login", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout ends the session
func (a *API) Logout(ctx context.Context) error {
	return a.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

// SaveHistory stores a generation in the user's content history
func (a *API) SaveHistory(ctx context.Context, platform string, r *Result) (*HistoryEntry, error) {
	engagement := r.EngagementPrediction
	in := HistoryEntry{
		Content:              r.Content,
		Platform:             platform,
		Hashtags:             r.Hashtags,
		EngagementPrediction: &engagement,
		Tone:                 r.Tone,
	}
	var out HistoryEntry
	if err := a.do(ctx, http.MethodPost, "/api/content-history", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History lists the user's content history
func (a *API) History(ctx context.Context) ([]HistoryEntry, error) {
	var out []HistoryEntry
	if err := a.do(ctx, http.MethodGet, "/api/content-history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) do(ctx context.Context, method, path string, body, result any) error {
	var apiErr APIError
	req := a.resty.R().SetContext(ctx).SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode())
		}
		return &apiErr
	}
	return nil
}
