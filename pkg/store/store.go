// Package store persists the whole CRM aggregate as a single JSON blob
// under one fixed key, the way the original deployment kept it in a
// browser-local key-value store. Read and write failures never propagate:
// loads fall back to the supplied default and saves are logged and dropped,
// leaving the in-memory aggregate authoritative for the session.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartlaw/crm-backend/pkg/models"
)

// Entry is one row of the key-value blob table.
type Entry struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "kv_entries" }

type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

func New(db *gorm.DB, log zerolog.Logger) *Store {
	return &Store{db: db, log: log}
}

// Migrate creates the blob table.
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Entry{})
}

// Load reads the aggregate stored under key. A missing row, a read error,
// or a corrupt blob all yield def; the stored value is left untouched (no
// auto-repair) and the caller always gets a usable aggregate.
func (s *Store) Load(ctx context.Context, key string, def models.AppData) models.AppData {
	var entry Entry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Error().Err(err).Str("key", key).Msg("reading stored aggregate")
		}
		def.Normalize()
		return def
	}

	var data models.AppData
	if err := json.Unmarshal([]byte(entry.Value), &data); err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("stored aggregate is corrupt, using default")
		def.Normalize()
		return def
	}
	data.Normalize()
	return data
}

// Save overwrites the blob under key with the serialized aggregate. Errors
// are logged and swallowed; the in-memory value stays authoritative.
func (s *Store) Save(ctx context.Context, key string, data models.AppData) {
	raw, err := json.Marshal(data)
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("serializing aggregate")
		return
	}

	entry := Entry{Key: key, Value: string(raw), UpdatedAt: time.Now()}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("writing aggregate, in-memory state stays authoritative")
	}
}
