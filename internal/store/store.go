// Package store is the relational persistence layer for users and daily
// challenges. A Store is constructed once at startup with the process-wide
// *sql.DB handle and injected into the services that need it; nothing in this
// package reads global state or the wall clock.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/dailyquest-app/dailyquest-backend/internal/models"
)

var (
	// ErrNotFound indicates the requested row does not exist (or belongs to
	// another user).
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername indicates the username is already taken.
	ErrDuplicateUsername = errors.New("username is already taken")
)

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateUser inserts a new user with zero points and returns it.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash, category, level string) (models.User, error) {
	userID := uuid.New()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, main_category, user_level, points, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6)
	`, userID, username, passwordHash, category, level, now)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	return models.User{
		ID:           userID,
		Username:     username,
		MainCategory: category,
		UserLevel:    level,
		CreatedAt:    now,
	}, nil
}

// FindUser returns the user with the given id.
func (s *Store) FindUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	var u models.User
	var avatar sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, main_category, user_level, points, avatar_url, created_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.MainCategory, &u.UserLevel, &u.Points, &avatar, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	u.AvatarURL = avatar.String
	return u, nil
}

// FindUserByUsername returns the user plus their password hash for sign-in.
// The username is matched case-insensitively.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (models.User, string, error) {
	var u models.User
	var avatar sql.NullString
	var passwordHash string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, main_category, user_level, points, avatar_url, created_at
		FROM users WHERE LOWER(username) = LOWER($1)
	`, username).Scan(&u.ID, &u.Username, &passwordHash, &u.MainCategory, &u.UserLevel, &u.Points, &avatar, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, "", ErrNotFound
		}
		return models.User{}, "", fmt.Errorf("find user by username: %w", err)
	}
	u.AvatarURL = avatar.String
	return u, passwordHash, nil
}

// UpdateProfile updates the user's quest preferences.
func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, category, level string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET main_category = $2, user_level = $3 WHERE id = $1
	`, id, category, level)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireRow(res)
}

// UpdateAvatar stores the uploaded avatar URL on the user.
func (s *Store) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET avatar_url = $2 WHERE id = $1
	`, id, avatarURL)
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	return requireRow(res)
}

// FindTodaysChallenges returns the challenges assigned to the user on the
// given day, oldest first. The day is supplied by the caller; the store never
// consults the clock.
func (s *Store) FindTodaysChallenges(ctx context.Context, userID uuid.UUID, day time.Time) ([]models.Challenge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, category, date_assigned, created_at
		FROM challenges
		WHERE user_id = $1 AND date_assigned = $2::date
		ORDER BY created_at, id
	`, userID, day.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("find challenges: %w", err)
	}
	defer rows.Close()

	var challenges []models.Challenge
	for rows.Next() {
		var c models.Challenge
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Category, &c.DateAssigned, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		challenges = append(challenges, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find challenges: %w", err)
	}
	return challenges, nil
}

// InsertChallenges persists a generated batch for (user, day) in a single
// transaction: either every quest in the batch lands or none do. A
// per-(user, day) advisory lock plus an emptiness re-check inside the
// transaction guards against two concurrent dashboard loads inserting
// duplicate batches; if a batch already exists the insert is skipped.
func (s *Store) InsertChallenges(ctx context.Context, userID uuid.UUID, category string, day time.Time, batch []models.QuestDraft) error {
	if len(batch) == 0 {
		return nil
	}
	dateKey := day.Format("2006-01-02")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert challenges: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		SELECT pg_advisory_xact_lock(hashtextextended($1 || ':' || $2, 0))
	`, userID.String(), dateKey); err != nil {
		return fmt.Errorf("lock daily batch: %w", err)
	}

	var existing int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM challenges WHERE user_id = $1 AND date_assigned = $2::date
	`, userID, dateKey).Scan(&existing); err != nil {
		return fmt.Errorf("check daily batch: %w", err)
	}
	if existing > 0 {
		// Another request already generated today's batch.
		return nil
	}

	for _, q := range batch {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO challenges (id, user_id, title, description, category, date_assigned)
			VALUES ($1, $2, $3, $4, $5, $6::date)
		`, uuid.New(), userID, q.Title, q.Description, category, dateKey); err != nil {
			return fmt.Errorf("insert challenge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert challenges: %w", err)
	}
	return nil
}

// CompleteChallenge deletes the challenge and credits points to its owner in
// one transaction. Returns ErrNotFound when the challenge does not exist or
// is owned by another user, so a repeated completion can never double-award.
func (s *Store) CompleteChallenge(ctx context.Context, challengeID, userID uuid.UUID, points int) (models.Challenge, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Challenge{}, 0, fmt.Errorf("complete challenge: %w", err)
	}
	defer tx.Rollback()

	var c models.Challenge
	err = tx.QueryRowContext(ctx, `
		DELETE FROM challenges
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, description, category, date_assigned, created_at
	`, challengeID, userID).Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Category, &c.DateAssigned, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Challenge{}, 0, ErrNotFound
		}
		return models.Challenge{}, 0, fmt.Errorf("complete challenge: %w", err)
	}

	var newPoints int
	err = tx.QueryRowContext(ctx, `
		UPDATE users SET points = points + $2 WHERE id = $1 RETURNING points
	`, userID, points).Scan(&newPoints)
	if err != nil {
		return models.Challenge{}, 0, fmt.Errorf("award points: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Challenge{}, 0, fmt.Errorf("complete challenge: %w", err)
	}
	return c, newPoints, nil
}

// Leaderboard returns up to limit users ordered by points descending, ties
// broken by username.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, points, COALESCE(avatar_url, '')
		FROM users
		ORDER BY points DESC, username ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var out []models.LeaderboardRow
	for rows.Next() {
		var r models.LeaderboardRow
		if err := rows.Scan(&r.Username, &r.Points, &r.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return out, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
