package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskmaster/internal/database"
	"taskmaster/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// eCoinsPerBlock: one e-coin is earned per five planned minutes of focus
const eCoinsPerBlock = 5

// FocusService manages the focus session lifecycle and the e-coin wallet
// ledger. Completing a session is the only wallet mutator; the session state
// transition and the credit happen in one transaction so no partial reward
// is ever issued.
type FocusService struct {
	db              *database.DB
	clock           clockwork.Clock
	activityService *ActivityService
}

// NewFocusService creates a new focus service
func NewFocusService(db *database.DB, clock clockwork.Clock, activityService *ActivityService) *FocusService {
	return &FocusService{
		db:              db,
		clock:           clock,
		activityService: activityService,
	}
}

// StartSession creates a new active focus session for the user. At most one
// session per user may be active; a concurrent start loses to the partial
// unique index on focus_sessions and surfaces as a ConflictError carrying
// the session that won.
func (s *FocusService) StartSession(userID string, durationMinutes int, taskID *string) (*models.FocusSession, error) {
	if durationMinutes < 1 {
		return nil, &ValidationError{Message: "Please provide a valid duration in minutes"}
	}

	active, err := s.activeSession(userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, &ConflictError{Message: "You already have an active focus session", Session: active}
	}

	now := s.clock.Now().UTC()
	session := &models.FocusSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		TaskID:    taskID,
		StartTime: now,
		Duration:  durationMinutes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.Exec(`
		INSERT INTO focus_sessions (id, user_id, task_id, start_time, duration, completed, ecoins_earned, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, 0, ?, ?)
	`, session.ID, session.UserID, session.TaskID, session.StartTime, session.Duration, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the check-then-create race: another request opened a
			// session between our check and insert.
			if winner, lookupErr := s.activeSession(userID); lookupErr == nil && winner != nil {
				return nil, &ConflictError{Message: "You already have an active focus session", Session: winner}
			}
			return nil, &ConflictError{Message: "You already have an active focus session"}
		}
		return nil, fmt.Errorf("failed to create focus session: %w", err)
	}

	if m := GetMetrics(); m != nil {
		m.FocusSessionsStarted.Inc()
	}

	return session, nil
}

// CompleteSession marks an open session as completed, computes the e-coin
// reward from the planned duration (not elapsed wall-clock time) and credits
// the user's wallet in the same transaction. The focus_session activity is
// then recorded best-effort.
func (s *FocusService) CompleteSession(userID, sessionID string) (*models.FocusSession, *models.UserWallet, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	session, err := scanSession(tx.QueryRow(`
		SELECT id, user_id, task_id, start_time, end_time, duration, completed, ecoins_earned, created_at, updated_at
		FROM focus_sessions
		WHERE id = ? AND user_id = ? AND completed = 0
	`, sessionID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, &NotFoundError{Resource: "Focus session"}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load focus session: %w", err)
	}

	now := s.clock.Now().UTC()
	earned := session.Duration / eCoinsPerBlock

	res, err := tx.Exec(`
		UPDATE focus_sessions
		SET completed = 1, end_time = ?, ecoins_earned = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND completed = 0
	`, now, earned, now, sessionID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to complete focus session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil, &NotFoundError{Resource: "Focus session"}
	}

	wallet, err := creditWallet(tx, userID, earned, now)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit focus session completion: %w", err)
	}

	session.Completed = true
	session.EndTime = &now
	session.ECoinsEarned = earned
	session.UpdatedAt = now

	if m := GetMetrics(); m != nil {
		m.FocusSessionsCompleted.Inc()
		m.ECoinsEarned.Add(float64(earned))
	}

	// Best-effort: streak bookkeeping never fails the completion
	s.activityService.RecordActivity(userID, models.ActivityFocusSession, session.Duration)

	return session, wallet, nil
}

// CancelSession removes an open session entirely. No reward, no activity
// record, no wallet effect; cancelled sessions leave no residue.
func (s *FocusService) CancelSession(userID, sessionID string) error {
	res, err := s.db.Exec(`
		DELETE FROM focus_sessions
		WHERE id = ? AND user_id = ? AND completed = 0
	`, sessionID, userID)
	if err != nil {
		return fmt.Errorf("failed to cancel focus session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Resource: "Focus session"}
	}

	if m := GetMetrics(); m != nil {
		m.FocusSessionsCancelled.Inc()
	}

	return nil
}

// GetSessions returns the user's focus sessions, newest first, with the
// linked task's title when one is attached
func (s *FocusService) GetSessions(userID string) ([]models.FocusSession, error) {
	rows, err := s.db.Query(`
		SELECT fs.id, fs.user_id, fs.task_id, fs.start_time, fs.end_time, fs.duration, fs.completed, fs.ecoins_earned, fs.created_at, fs.updated_at,
		       t.title
		FROM focus_sessions fs
		LEFT JOIN tasks t ON t.id = fs.task_id
		WHERE fs.user_id = ?
		ORDER BY fs.start_time DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query focus sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]models.FocusSession, 0)
	for rows.Next() {
		var fs models.FocusSession
		var taskID, taskTitle sql.NullString
		var endTime sql.NullTime
		if err := rows.Scan(&fs.ID, &fs.UserID, &taskID, &fs.StartTime, &endTime, &fs.Duration, &fs.Completed, &fs.ECoinsEarned, &fs.CreatedAt, &fs.UpdatedAt, &taskTitle); err != nil {
			return nil, fmt.Errorf("failed to scan focus session: %w", err)
		}
		if taskID.Valid {
			fs.TaskID = &taskID.String
			if taskTitle.Valid {
				fs.Task = &models.TaskSummary{ID: taskID.String, Title: taskTitle.String}
			}
		}
		if endTime.Valid {
			fs.EndTime = &endTime.Time
		}
		sessions = append(sessions, fs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate focus sessions: %w", err)
	}

	return sessions, nil
}

// GetWallet returns the user's wallet, lazily creating a zero-balance one on
// first read. The read path never fails merely because the user has never
// earned anything.
func (s *FocusService) GetWallet(userID string) (*models.UserWallet, error) {
	wallet, err := scanWallet(s.db.QueryRow(`
		SELECT id, user_id, e_coins, lifetime_earned, created_at, updated_at
		FROM user_wallets
		WHERE user_id = ?
	`, userID))
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query wallet: %w", err)
	}

	// Materialize an empty wallet; a zero credit is an upsert, so a
	// concurrent first read or credit cannot duplicate the row.
	return creditWallet(s.db, userID, 0, s.clock.Now().UTC())
}

// Credit adds amount to both the spendable balance and the lifetime total,
// creating the wallet if it does not exist. Zero is permitted (a session
// shorter than five minutes earns nothing); negative amounts are rejected —
// there is no debit path.
func (s *FocusService) Credit(userID string, amount int) (*models.UserWallet, error) {
	if amount < 0 {
		return nil, &ValidationError{Message: "Credit amount cannot be negative"}
	}
	return creditWallet(s.db, userID, amount, s.clock.Now().UTC())
}

// activeSession returns the user's open session, or nil when none exists
func (s *FocusService) activeSession(userID string) (*models.FocusSession, error) {
	session, err := scanSession(s.db.QueryRow(`
		SELECT id, user_id, task_id, start_time, end_time, duration, completed, ecoins_earned, created_at, updated_at
		FROM focus_sessions
		WHERE user_id = ? AND completed = 0 AND end_time IS NULL
	`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active session: %w", err)
	}
	return session, nil
}

// dbtx is the subset of database/sql shared by *sql.Tx and *database.DB,
// letting the wallet upsert run inside or outside a transaction
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

func creditWallet(q dbtx, userID string, amount int, now time.Time) (*models.UserWallet, error) {
	_, err := q.Exec(`
		INSERT INTO user_wallets (id, user_id, e_coins, lifetime_earned, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			e_coins = e_coins + excluded.e_coins,
			lifetime_earned = lifetime_earned + excluded.lifetime_earned,
			updated_at = excluded.updated_at
	`, uuid.NewString(), userID, amount, amount, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}

	wallet, err := scanWallet(q.QueryRow(`
		SELECT id, user_id, e_coins, lifetime_earned, created_at, updated_at
		FROM user_wallets
		WHERE user_id = ?
	`, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	return wallet, nil
}

func scanSession(row *sql.Row) (*models.FocusSession, error) {
	var fs models.FocusSession
	var taskID sql.NullString
	var endTime sql.NullTime
	err := row.Scan(&fs.ID, &fs.UserID, &taskID, &fs.StartTime, &endTime, &fs.Duration, &fs.Completed, &fs.ECoinsEarned, &fs.CreatedAt, &fs.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if taskID.Valid {
		fs.TaskID = &taskID.String
	}
	if endTime.Valid {
		fs.EndTime = &endTime.Time
	}
	return &fs, nil
}

func scanWallet(row *sql.Row) (*models.UserWallet, error) {
	var w models.UserWallet
	err := row.Scan(&w.ID, &w.UserID, &w.ECoins, &w.LifetimeEarned, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
