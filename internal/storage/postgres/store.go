package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/GriffinCanCode/PostPilot/internal/storage"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Store is a Postgres-backed storage.Store
type Store struct {
	db *sql.DB
}

// New wraps an open database
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

var _ storage.Store = (*Store)(nil)

// Name returns the backend name
func (s *Store) Name() string { return "postgres" }

// Close closes the pool
func (s *Store) Close() error { return s.db.Close() }

// CreateUser inserts a user together with their default settings
func (s *Store) CreateUser(ctx context.Context, u *storage.User) error {
	return WithTx(ctx, s.db, func(ctx context.Context) error {
		exec := GetExecutor(ctx, s.db)
		err := exec.QueryRowContext(ctx,
			`INSERT INTO users (username, password_hash, email)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`,
			u.Username, u.PasswordHash, u.Email,
		).Scan(&u.ID, &u.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return storage.ErrConflict
			}
			return err
		}

		st := storage.DefaultSettings(u.ID)
		return s.UpsertSettings(ctx, &st)
	})
}

// GetUser looks a user up by id
func (s *Store) GetUser(ctx context.Context, id int64) (*storage.User, error) {
	u := &storage.User{}
	err := GetExecutor(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, username, password_hash, email, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// GetUserByUsername looks a user up by name, case-insensitively
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*storage.User, error) {
	u := &storage.User{}
	err := GetExecutor(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, username, password_hash, email, created_at FROM users WHERE lower(username) = lower($1)`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// ListHistory returns the user's history, newest first
func (s *Store) ListHistory(ctx context.Context, userID int64) ([]storage.HistoryEntry, error) {
	rows, err := GetExecutor(ctx, s.db).QueryContext(ctx,
		`SELECT id, user_id, content, platform, hashtags, engagement_prediction, tone, generated_at
		FROM content_history WHERE user_id = $1
		ORDER BY generated_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]storage.HistoryEntry, 0)
	for rows.Next() {
		var e storage.HistoryEntry
		var pred sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.UserID, &e.Content, &e.Platform, &e.Hashtags, &pred, &e.Tone, &e.GeneratedAt); err != nil {
			return nil, err
		}
		e.EngagementPrediction = floatPtr(pred)
		out = append(out, e)
	}
	return out, rows.Err()
}

// CreateHistory inserts a history entry
func (s *Store) CreateHistory(ctx context.Context, e *storage.HistoryEntry) error {
	if e.GeneratedAt.IsZero() {
		e.GeneratedAt = time.Now().UTC()
	}
	return GetExecutor(ctx, s.db).QueryRowContext(ctx,
		`INSERT INTO content_history (user_id, content, platform, hashtags, engagement_prediction, tone, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		e.UserID, e.Content, e.Platform, e.Hashtags, nullFloat(e.EngagementPrediction), e.Tone, e.GeneratedAt,
	).Scan(&e.ID)
}

// DeleteHistory removes an entry owned by userID
func (s *Store) DeleteHistory(ctx context.Context, userID, id int64) error {
	return s.deleteOwned(ctx, `DELETE FROM content_history WHERE id = $1 AND user_id = $2`, id, userID)
}

// ListAnalyses returns the user's analyses, newest first
func (s *Store) ListAnalyses(ctx context.Context, userID int64) ([]storage.Analysis, error) {
	rows, err := GetExecutor(ctx, s.db).QueryContext(ctx,
		`SELECT id, user_id, content, sentiment, engagement_score, hashtags, created_at
		FROM content_analyses WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]storage.Analysis, 0)
	for rows.Next() {
		var a storage.Analysis
		if err := rows.Scan(&a.ID, &a.UserID, &a.Content, &a.Sentiment, &a.EngagementScore, &a.Hashtags, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateAnalysis inserts an analysis
func (s *Store) CreateAnalysis(ctx context.Context, a *storage.Analysis) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return GetExecutor(ctx, s.db).QueryRowContext(ctx,
		`INSERT INTO content_analyses (user_id, content, sentiment, engagement_score, hashtags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		a.UserID, a.Content, a.Sentiment, a.EngagementScore, a.Hashtags, a.CreatedAt,
	).Scan(&a.ID)
}

// DeleteAnalysis removes an analysis owned by userID
func (s *Store) DeleteAnalysis(ctx context.Context, userID, id int64) error {
	return s.deleteOwned(ctx, `DELETE FROM content_analyses WHERE id = $1 AND user_id = $2`, id, userID)
}

const scheduledColumns = `id, user_id, content, platform, scheduled_time, status, hashtags, engagement_prediction, tone, created_at`

// ListScheduled returns the user's posts ordered by scheduled time
func (s *Store) ListScheduled(ctx context.Context, userID int64) ([]storage.ScheduledPost, error) {
	return s.queryScheduled(ctx,
		`SELECT `+scheduledColumns+` FROM scheduled_posts WHERE user_id = $1
		ORDER BY scheduled_time ASC, id ASC`, userID)
}

// CreateScheduled inserts a scheduled post
func (s *Store) CreateScheduled(ctx context.Context, p *storage.ScheduledPost) error {
	if p.Status == "" {
		p.Status = storage.StatusPending
	}
	return GetExecutor(ctx, s.db).QueryRowContext(ctx,
		`INSERT INTO scheduled_posts (user_id, content, platform, scheduled_time, status, hashtags, engagement_prediction, tone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		p.UserID, p.Content, p.Platform, p.ScheduledTime, p.Status, p.Hashtags, nullFloat(p.EngagementPrediction), p.Tone,
	).Scan(&p.ID, &p.CreatedAt)
}

// PendingDue returns up to limit pending posts scheduled at or before now
func (s *Store) PendingDue(ctx context.Context, now time.Time, limit int) ([]storage.ScheduledPost, error) {
	return s.queryScheduled(ctx,
		`SELECT `+scheduledColumns+` FROM scheduled_posts
		WHERE status = $1 AND scheduled_time <= $2
		ORDER BY scheduled_time ASC, id ASC
		LIMIT $3`, storage.StatusPending, now, limit)
}

// UpdateScheduledStatus sets the status of a post
func (s *Store) UpdateScheduledStatus(ctx context.Context, id int64, status string) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE scheduled_posts SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetSettings returns the user's settings
func (s *Store) GetSettings(ctx context.Context, userID int64) (*storage.Settings, error) {
	st := &storage.Settings{}
	err := GetExecutor(ctx, s.db).QueryRowContext(ctx,
		`SELECT user_id, theme, email_notifications, push_notifications, weekly_digest, content_language, auto_schedule, updated_at
		FROM user_settings WHERE user_id = $1`, userID,
	).Scan(&st.UserID, &st.Theme, &st.EmailNotifications, &st.PushNotifications, &st.WeeklyDigest, &st.ContentLanguage, &st.AutoSchedule, &st.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return st, nil
}

// UpsertSettings creates or replaces the user's settings
func (s *Store) UpsertSettings(ctx context.Context, st *storage.Settings) error {
	return GetExecutor(ctx, s.db).QueryRowContext(ctx,
		`INSERT INTO user_settings (user_id, theme, email_notifications, push_notifications, weekly_digest, content_language, auto_schedule, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (user_id) DO UPDATE SET
			theme = EXCLUDED.theme,
			email_notifications = EXCLUDED.email_notifications,
			push_notifications = EXCLUDED.push_notifications,
			weekly_digest = EXCLUDED.weekly_digest,
			content_language = EXCLUDED.content_language,
			auto_schedule = EXCLUDED.auto_schedule,
			updated_at = now()
		RETURNING updated_at`,
		st.UserID, st.Theme, st.EmailNotifications, st.PushNotifications, st.WeeklyDigest, st.ContentLanguage, st.AutoSchedule,
	).Scan(&st.UpdatedAt)
}

// ListSocialAccounts returns the user's linked accounts
func (s *Store) ListSocialAccounts(ctx context.Context, userID int64) ([]storage.SocialAccount, error) {
	rows, err := GetExecutor(ctx, s.db).QueryContext(ctx,
		`SELECT id, user_id, platform, account_id, access_token, username, created_at
		FROM social_accounts WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]storage.SocialAccount, 0)
	for rows.Next() {
		var a storage.SocialAccount
		if err := rows.Scan(&a.ID, &a.UserID, &a.Platform, &a.AccountID, &a.AccessToken, &a.Username, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AddSocialAccount links an account
func (s *Store) AddSocialAccount(ctx context.Context, a *storage.SocialAccount) error {
	return GetExecutor(ctx, s.db).QueryRowContext(ctx,
		`INSERT INTO social_accounts (user_id, platform, account_id, access_token, username)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		a.UserID, a.Platform, a.AccountID, a.AccessToken, a.Username,
	).Scan(&a.ID, &a.CreatedAt)
}

// RemoveSocialAccount unlinks an account owned by userID
func (s *Store) RemoveSocialAccount(ctx context.Context, userID, id int64) error {
	return s.deleteOwned(ctx, `DELETE FROM social_accounts WHERE id = $1 AND user_id = $2`, id, userID)
}

func (s *Store) queryScheduled(ctx context.Context, query string, args ...any) ([]storage.ScheduledPost, error) {
	rows, err := GetExecutor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]storage.ScheduledPost, 0)
	for rows.Next() {
		var p storage.ScheduledPost
		var pred sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.UserID, &p.Content, &p.Platform, &p.ScheduledTime, &p.Status, &p.Hashtags, &pred, &p.Tone, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.EngagementPrediction = floatPtr(pred)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) deleteOwned(ctx context.Context, query string, id, userID int64) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
