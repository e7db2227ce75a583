package infrastructure

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"resume-screener/domain"
)

var (
	// ErrNotFound signals a lookup miss. Callers treat it as an absent
	// value, not a failure.
	ErrNotFound = errors.New("record not found")

	// ErrUsernameTaken is returned when registration collides with an
	// existing username.
	ErrUsernameTaken = errors.New("username already exists")
)

// dummyHash is compared against on the unknown-user path so credential
// checks cost the same whether or not the username exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("resume-screener"), bcrypt.DefaultCost)

// RecordStore persists user accounts and evaluation records. The
// evaluations table is append-only; rows are never updated or deleted.
type RecordStore struct {
	db *gorm.DB
}

func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db}
}

// SaveEvaluation appends one evaluation row.
func (s *RecordStore) SaveEvaluation(userID uint, filename, jobDescription string, result domain.EvaluationResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	rec := domain.Evaluation{
		UserID:         userID,
		Filename:       filename,
		JobDescription: jobDescription,
		ResultJSON:     string(payload),
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("failed to save evaluation: %w", err)
	}
	return nil
}

// FetchAll returns every evaluation for the user, newest first.
func (s *RecordStore) FetchAll(userID uint) ([]domain.Evaluation, error) {
	var recs []domain.Evaluation
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch evaluations: %w", err)
	}
	return recs, nil
}

// FetchLatestByFilename returns the most recent result for a
// (user, filename) pair, or ErrNotFound when no row matches.
func (s *RecordStore) FetchLatestByFilename(userID uint, filename string) (domain.EvaluationResult, error) {
	var rec domain.Evaluation
	err := s.db.Where("user_id = ? AND filename = ?", userID, filename).
		Order("id DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.EvaluationResult{}, ErrNotFound
	}
	if err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("failed to fetch evaluation: %w", err)
	}

	result, err := domain.DecodeResult([]byte(rec.ResultJSON))
	if err != nil {
		return domain.EvaluationResult{}, fmt.Errorf("failed to decode stored result: %w", err)
	}
	return result, nil
}

// CreateUser registers a new account with a hashed password. Returns
// ErrUsernameTaken if the username is already in use; the existing row
// is never overwritten.
func (s *RecordStore) CreateUser(username, password, fullName, email string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{
		Username:     username,
		PasswordHash: string(hash),
		FullName:     fullName,
		Email:        email,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *RecordStore) FindUserByID(id uint) (domain.User, error) {
	var user domain.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (s *RecordStore) FindUserByUsername(username string) (domain.User, error) {
	var user domain.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// VerifyCredentials checks a plaintext password against the stored
// hash. Unknown username and wrong password are indistinguishable: both
// return false, and a dummy hash comparison runs on the miss path so
// the two cases do not diverge in timing.
func (s *RecordStore) VerifyCredentials(username, password string) (domain.User, bool) {
	user, err := s.FindUserByUsername(username)
	if err != nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return domain.User{}, false
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, false
	}
	return user, true
}
