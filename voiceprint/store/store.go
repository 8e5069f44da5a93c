// Package store persists enrolled reference voiceprints. One record per
// enrollment; the newest active record is the reference used by speaker
// identification. Absence of a reference is a normal condition, not an error.
package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kikuchi-mizuki/saiten/errors"
	"github.com/kikuchi-mizuki/saiten/logger"
)

// Record is a persisted enrolled voiceprint.
type Record struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name      string    `json:"name" gorm:"not null"`
	Embedding []byte    `json:"-" gorm:"not null"` // JSON-encoded []float64, unit norm
	Dim       int       `json:"dim" gorm:"not null"`
	IsActive  bool      `json:"is_active" gorm:"default:true;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName sets the table name for voiceprint records.
func (Record) TableName() string { return "voiceprints" }

// BeforeCreate generates an ID if not already set.
func (r *Record) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Vector decodes the stored embedding.
func (r *Record) Vector() ([]float64, error) {
	var v []float64
	if err := json.Unmarshal(r.Embedding, &v); err != nil {
		return nil, fmt.Errorf("decode stored embedding: %w", err)
	}
	return v, nil
}

// Store provides access to persisted voiceprints.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open opens (creating if needed) the voiceprint database at path and
// migrates the schema.
func Open(path string, log *logger.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open voiceprint database: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate voiceprint schema: %w", err)
	}
	return &Store{db: db, log: log.WithComponent("voiceprint_store")}, nil
}

// Save persists a new enrolled voiceprint. The vector must already be
// unit-normalized by the caller.
func (s *Store) Save(ctx context.Context, name string, vector []float64) (*Record, error) {
	if len(vector) == 0 {
		return nil, errors.EmptyInput()
	}
	encoded, err := json.Marshal(vector)
	if err != nil {
		return nil, errors.Database(err)
	}

	rec := &Record{
		Name:      name,
		Embedding: encoded,
		Dim:       len(vector),
		IsActive:  true,
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, errors.Database(err)
	}

	s.log.Info("voiceprint enrolled", logger.Fields("id", rec.ID.String(), "name", name, "dim", rec.Dim))
	return rec, nil
}

// List returns all voiceprints, newest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	var recs []Record
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&recs).Error; err != nil {
		return nil, errors.Database(err)
	}
	return recs, nil
}

// Delete removes a voiceprint by ID.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&Record{}, "id = ?", id)
	if res.Error != nil {
		return errors.Database(res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NotFound("voiceprint")
	}
	return nil
}

// LoadReference returns the newest active voiceprint's vector, or nil when
// no enrollment exists.
func (s *Store) LoadReference(ctx context.Context) ([]float64, error) {
	var rec Record
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		First(&rec).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Database(err)
	}
	return rec.Vector()
}
