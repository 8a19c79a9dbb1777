package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"taskmaster/internal/database"
	"taskmaster/internal/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// UserService handles user accounts
type UserService struct {
	db    *database.DB
	clock clockwork.Clock
}

// NewUserService creates a new user service
func NewUserService(db *database.DB, clock clockwork.Clock) *UserService {
	return &UserService{db: db, clock: clock}
}

// Create inserts a new user with an already-hashed password
func (s *UserService) Create(name, email, passwordHash string) (*models.User, error) {
	now := s.clock.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(strings.ToLower(email)),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.Exec(`
		INSERT INTO users (id, name, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &ValidationError{Message: "User with this email already exists"}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByEmail returns a user by email, or nil when none exists
func (s *UserService) GetByEmail(email string) (*models.User, error) {
	user, err := s.scanUser(s.db.QueryRow(`
		SELECT id, name, email, password_hash, created_at, updated_at, last_login_at
		FROM users
		WHERE email = ?
	`, strings.TrimSpace(strings.ToLower(email))))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GetByID returns a user by id
func (s *UserService) GetByID(userID string) (*models.User, error) {
	user, err := s.scanUser(s.db.QueryRow(`
		SELECT id, name, email, password_hash, created_at, updated_at, last_login_at
		FROM users
		WHERE id = ?
	`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "User"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// UpdateProfile updates name, email and optionally the password hash
func (s *UserService) UpdateProfile(userID string, name, email, passwordHash string) (*models.User, error) {
	user, err := s.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	if email = strings.TrimSpace(strings.ToLower(email)); email != "" {
		user.Email = email
	}
	if passwordHash != "" {
		user.PasswordHash = passwordHash
	}
	user.UpdatedAt = s.clock.Now().UTC()

	_, err = s.db.Exec(`
		UPDATE users SET name = ?, email = ?, password_hash = ?, updated_at = ?
		WHERE id = ?
	`, user.Name, user.Email, user.PasswordHash, user.UpdatedAt, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &ValidationError{Message: "User with this email already exists"}
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// TouchLastLogin stamps the user's last login time
func (s *UserService) TouchLastLogin(userID string) error {
	now := s.clock.Now().UTC()
	_, err := s.db.Exec("UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?", now, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (s *UserService) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var lastLogin sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt, &lastLogin)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		u.LastLoginAt = &lastLogin.Time
	}
	return &u, nil
}
