package storage

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// Scheduled post statuses
const (
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusFailed    = "failed"
)

// User is a registered account
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// HistoryEntry is a piece of generated content the user kept
type HistoryEntry struct {
	ID                   int64      `json:"id"`
	UserID               int64      `json:"user_id"`
	Content              string     `json:"content"`
	Platform             string     `json:"platform"`
	Hashtags             StringList `json:"hashtags"`
	EngagementPrediction *float64   `json:"engagement_prediction,omitempty"`
	Tone                 string     `json:"tone,omitempty"`
	GeneratedAt          time.Time  `json:"generated_at"`
}

// Sentiment is the tone label and clarity score of an analysis
type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Analysis is a stored content analysis
type Analysis struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	Content         string     `json:"content"`
	Sentiment       Sentiment  `json:"sentiment"`
	EngagementScore float64    `json:"engagement_score"`
	Hashtags        StringList `json:"hashtags"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ScheduledPost is a post queued for publication
type ScheduledPost struct {
	ID                   int64      `json:"id"`
	UserID               int64      `json:"user_id"`
	Content              string     `json:"content"`
	Platform             string     `json:"platform"`
	ScheduledTime        time.Time  `json:"scheduled_time"`
	Status               string     `json:"status"`
	Hashtags             StringList `json:"hashtags"`
	EngagementPrediction *float64   `json:"engagement_prediction,omitempty"`
	Tone                 string     `json:"tone,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// Settings holds per-user preferences
type Settings struct {
	UserID             int64     `json:"user_id"`
	Theme              string    `json:"theme"`
	EmailNotifications bool      `json:"email_notifications"`
	PushNotifications  bool      `json:"push_notifications"`
	WeeklyDigest       bool      `json:"weekly_digest"`
	ContentLanguage    string    `json:"content_language"`
	AutoSchedule       bool      `json:"auto_schedule"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DefaultSettings returns the settings a new user starts with
func DefaultSettings(userID int64) Settings {
	return Settings{
		UserID:             userID,
		Theme:              "system",
		EmailNotifications: true,
		PushNotifications:  true,
		WeeklyDigest:       true,
		ContentLanguage:    "en",
		AutoSchedule:       false,
	}
}

// SocialAccount is a linked social network account
type SocialAccount struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Platform    string    `json:"platform"`
	AccountID   string    `json:"account_id"`
	AccessToken string    `json:"-"`
	Username    string    `json:"username"`
	CreatedAt   time.Time `json:"created_at"`
}

// StringList is a []string stored as a JSON array column
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := sonic.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	if data == nil {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := sonic.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

// MarshalJSON keeps a nil list as [] on the wire
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return sonic.Marshal([]string(l))
}

// Value implements driver.Valuer
func (s Sentiment) Value() (driver.Value, error) {
	b, err := sonic.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (s *Sentiment) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("scan sentiment: %w", err)
	}
	if data == nil {
		*s = Sentiment{}
		return nil
	}
	return sonic.Unmarshal(data, s)
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported column type")
	}
}
