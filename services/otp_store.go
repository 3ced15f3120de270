package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"salon-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CodeStore keeps one-time codes until they are used or expire.
type CodeStore interface {
	// Save replaces any code already stored under key.
	Save(ctx context.Context, key, code string, ttl time.Duration) error
	// Consume reports whether code matches the live code under key and, if
	// so, deletes it. Expired codes are deleted and never match.
	Consume(ctx context.Context, key, code string) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

func codesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

type memoryCode struct {
	code      string
	expiresAt time.Time
}

// MemoryCodeStore is a process-local CodeStore for single instance deployments.
type MemoryCodeStore struct {
	mu    sync.Mutex
	codes map[string]memoryCode
	now   func() time.Time
}

func NewMemoryCodeStore() *MemoryCodeStore {
	return &MemoryCodeStore{codes: map[string]memoryCode{}, now: time.Now}
}

func (s *MemoryCodeStore) Save(_ context.Context, key, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[key] = memoryCode{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryCodeStore) Consume(_ context.Context, key, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.codes[key]
	if !ok {
		return false, nil
	}
	if s.now().After(stored.expiresAt) {
		delete(s.codes, key)
		return false, nil
	}
	if !codesEqual(stored.code, code) {
		return false, nil
	}
	delete(s.codes, key)
	return true, nil
}

func (s *MemoryCodeStore) PurgeExpired(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var n int64
	for k, c := range s.codes {
		if now.After(c.expiresAt) {
			delete(s.codes, k)
			n++
		}
	}
	return n, nil
}

// GormCodeStore keeps codes in the otp_codes table so every instance behind
// a load balancer sees the same codes.
type GormCodeStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormCodeStore(db *gorm.DB) *GormCodeStore {
	return &GormCodeStore{db: db, now: time.Now}
}

func (s *GormCodeStore) Save(ctx context.Context, key, code string, ttl time.Duration) error {
	now := s.now()
	row := models.OTPCode{Address: key, Code: code, ExpiresAt: now.Add(ttl), CreatedAt: now}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "created_at"}),
	}).Create(&row).Error
}

func (s *GormCodeStore) Consume(ctx context.Context, key, code string) (bool, error) {
	db := s.db.WithContext(ctx)
	var row models.OTPCode
	if err := db.Where("address = ?", key).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if s.now().After(row.ExpiresAt) {
		return false, db.Where("address = ?", key).Delete(&models.OTPCode{}).Error
	}
	if !codesEqual(row.Code, code) {
		return false, nil
	}
	// Only one concurrent caller gets to delete the row.
	res := db.Where("address = ? AND code = ?", key, row.Code).Delete(&models.OTPCode{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormCodeStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", s.now()).Delete(&models.OTPCode{})
	return res.RowsAffected, res.Error
}
