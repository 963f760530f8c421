package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/valutatrade/tradehub/internal/apperrors"
	"github.com/valutatrade/tradehub/internal/core/domain"
)

const usersFileName = "users.json"

// UserRepository stores user records as an array in users.json. User ids are
// assigned by auto-increment over the stored records.
type UserRepository struct {
	path string
	mu   sync.Mutex
}

// NewUserRepository creates the repository rooted at dataPath.
func NewUserRepository(dataPath string) *UserRepository {
	return &UserRepository{path: filepath.Join(dataPath, usersFileName)}
}

type userJSON struct {
	UserID           int64     `json:"user_id"`
	Username         string    `json:"username"`
	HashedPassword   string    `json:"hashed_password"`
	RegistrationDate time.Time `json:"registration_date"`
}

// CreateUser assigns the next user id and persists the record. Usernames
// are unique; a taken name reports apperrors.ErrDuplicate.
func (r *UserRepository) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadLocked()
	if err != nil {
		return nil, err
	}

	var maxID int64
	for _, rec := range records {
		if rec.Username == user.Username {
			return nil, fmt.Errorf("username '%s': %w", user.Username, apperrors.ErrDuplicate)
		}
		if rec.UserID > maxID {
			maxID = rec.UserID
		}
	}

	user.UserID = maxID + 1
	records = append(records, userJSON{
		UserID:           user.UserID,
		Username:         user.Username,
		HashedPassword:   user.PasswordHash,
		RegistrationDate: user.RegistrationDate,
	})

	if err := writeJSONFile(r.path, records); err != nil {
		return nil, fmt.Errorf("persist users: %w", err)
	}
	return &user, nil
}

// FindUserByUsername returns the user, or apperrors.ErrNotFound.
func (r *UserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadLocked()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.Username == username {
			return toDomainUser(rec), nil
		}
	}
	return nil, apperrors.ErrNotFound
}

// FindUserByID returns the user, or apperrors.ErrNotFound.
func (r *UserRepository) FindUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.loadLocked()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.UserID == userID {
			return toDomainUser(rec), nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *UserRepository) loadLocked() ([]userJSON, error) {
	var records []userJSON
	err := readJSONFile(r.path, &records)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return records, nil
}

func toDomainUser(rec userJSON) *domain.User {
	return &domain.User{
		UserID:           rec.UserID,
		Username:         rec.Username,
		PasswordHash:     rec.HashedPassword,
		RegistrationDate: rec.RegistrationDate,
	}
}
