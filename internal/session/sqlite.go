package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ripple/internal/models"
)

// sessionRecord is the on-disk shape of the persisted session. A single
// row with a fixed primary key holds the current session.
type sessionRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Token     string `gorm:"not null"`
	UserJSON  string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (sessionRecord) TableName() string { return "sessions" }

const singletonSessionID = 1

// SQLiteStore implements Store on a local sqlite file, the default
// persistence for a single-user client installation.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the sqlite file at path and migrates
// the session table.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session cache at %s: %w", path, err)
	}
	if err := db.AutoMigrate(&sessionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session cache: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, session *models.Session) error {
	userJSON := ""
	if session.User != nil {
		data, err := json.Marshal(session.User)
		if err != nil {
			return fmt.Errorf("failed to marshal cached user: %w", err)
		}
		userJSON = string(data)
	}

	record := sessionRecord{
		ID:       singletonSessionID,
		Token:    session.Token,
		UserJSON: userJSON,
	}
	return s.db.WithContext(ctx).Save(&record).Error
}

func (s *SQLiteStore) Load(ctx context.Context) (*models.Session, error) {
	var record sessionRecord
	err := s.db.WithContext(ctx).First(&record, singletonSessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	session := &models.Session{
		Token:           record.Token,
		IsAuthenticated: record.Token != "",
	}
	if record.UserJSON != "" {
		var user models.User
		if err := json.Unmarshal([]byte(record.UserJSON), &user); err == nil {
			session.User = &user
		}
	}
	return session, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, singletonSessionID).Error
}
