// Package corpusdb is the check subcommand's run-history store: one
// row per corpus file per invocation, giving --rerun something durable
// to diff against across invocations. Grounded on the teacher's
// db/sqlite.go connection setup and models/models.go record shape.
package corpusdb

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RunRecord is one corpus file's outcome for one check invocation.
type RunRecord struct {
	ID          uint   `gorm:"primaryKey"`
	InvocationID string `gorm:"type:varchar(64);index"`

	FilePath    string    `gorm:"type:text;index"`
	ContentHash string    `gorm:"type:varchar(64)"`
	Passed      bool      `gorm:"default:false"`
	ErrorSummary string   `gorm:"type:text"`
	DurationMS  int64     `gorm:"default:0"`
	RanAt       time.Time `gorm:"autoCreateTime"`
}

func (RunRecord) TableName() string { return "run_records" }

// Connect opens (creating if needed) the SQLite run-history database
// under dbPath and runs its migration, mirroring db.Connect's
// directory-creation-then-AutoMigrate shape.
func Connect(dbPath string, debug bool) (*gorm.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("corpusdb: create db directory: %w", err)
	}

	cfg := &gorm.Config{}
	if debug {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), cfg)
	if err != nil {
		return nil, fmt.Errorf("corpusdb: connect: %w", err)
	}
	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, fmt.Errorf("corpusdb: migrate: %w", err)
	}
	return db, nil
}

// Record inserts one file's result for the given invocation.
func Record(db *gorm.DB, invocationID, filePath, contentHash string, passed bool, errorSummary string, duration time.Duration) error {
	rec := RunRecord{
		InvocationID: invocationID,
		FilePath:     filePath,
		ContentHash:  contentHash,
		Passed:       passed,
		ErrorSummary: errorSummary,
		DurationMS:   duration.Milliseconds(),
	}
	return db.Create(&rec).Error
}

// PreviousResult returns the most recent recorded result for filePath
// (latest ran_at, then highest id), used by --rerun to decide whether a
// file's content (by hash) previously passed and can be skipped.
func PreviousResult(db *gorm.DB, filePath string) (*RunRecord, error) {
	var rec RunRecord
	err := db.Where("file_path = ?", filePath).Order("ran_at desc, id desc").First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("corpusdb: lookup previous result: %w", err)
	}
	return &rec, nil
}
