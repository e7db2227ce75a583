package domain

import "time"

// User is a registered account. Passwords are stored only as bcrypt
// hashes, never plaintext.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	FullName     string `gorm:"size:255"`
	Email        string `gorm:"size:255"`
	CreatedAt    time.Time
}

// Evaluation is one persisted evaluation attempt. Rows are append-only:
// re-evaluating the same filename inserts a new row, and "latest" for a
// (user, filename) pair is the highest id.
type Evaluation struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         uint   `gorm:"index;not null"`
	Filename       string `gorm:"size:255;not null"`
	JobDescription string `gorm:"type:text"`
	ResultJSON     string `gorm:"type:text;not null"`
	CreatedAt      time.Time
}
