package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// Storage 保存 ClickBank 凭据与情报记录
type Storage struct {
	db  *sqlx.DB
	now func() time.Time
}

// ClickBankCreds 单个用户的 ClickBank 凭据
type ClickBankCreds struct {
	UserID    string    `db:"user_id"`
	Nickname  string    `db:"nickname"`
	ClerkKey  string    `db:"clerk_key"`
	UpdatedAt time.Time `db:"updated_at"`
}

// StoredIntelligence 已保存的情报记录
type StoredIntelligence struct {
	ID        string
	CreatedAt time.Time
	Record    *model.IntelligenceRecord
}

type intelligenceRow struct {
	ID        string    `db:"id"`
	Payload   []byte    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}

// NewStorage 连接 Postgres 并自动建表
func NewStorage(ctx context.Context, cfg config.DBConfig) (*Storage, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// New 使用已打开的连接，驱动可以是 postgres 或 sqlite3
func New(db *sqlx.DB) *Storage {
	return &Storage{db: db, now: time.Now}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Migrate 建表，可重复执行
func (s *Storage) Migrate(ctx context.Context) error {
	payloadType, tsType := "TEXT", "TIMESTAMP"
	if s.db.DriverName() == "postgres" {
		payloadType, tsType = "JSONB", "TIMESTAMPTZ"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS clickbank_accounts (
			user_id    TEXT PRIMARY KEY,
			nickname   TEXT NOT NULL,
			clerk_key  TEXT NOT NULL,
			updated_at ` + tsType + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS intelligence_records (
			id               TEXT PRIMARY KEY,
			source_url       TEXT NOT NULL,
			product_name     TEXT NOT NULL,
			analysis_method  TEXT NOT NULL,
			confidence_score DOUBLE PRECISION NOT NULL,
			payload          ` + payloadType + ` NOT NULL,
			created_at       ` + tsType + ` NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveClickBankCreds 按 user_id 插入或更新
func (s *Storage) SaveClickBankCreds(ctx context.Context, c ClickBankCreds) error {
	q := s.db.Rebind(`INSERT INTO clickbank_accounts (user_id, nickname, clerk_key, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			nickname = excluded.nickname,
			clerk_key = excluded.clerk_key,
			updated_at = excluded.updated_at`)
	_, err := s.db.ExecContext(ctx, q, c.UserID, c.Nickname, c.ClerkKey, s.now().UTC())
	if err != nil {
		return fmt.Errorf("save clickbank credentials: %w", err)
	}
	return nil
}

// GetClickBankCreds 不存在时返回 nil, nil
func (s *Storage) GetClickBankCreds(ctx context.Context, userID string) (*ClickBankCreds, error) {
	var c ClickBankCreds
	q := s.db.Rebind(`SELECT user_id, nickname, clerk_key, updated_at FROM clickbank_accounts WHERE user_id = ?`)
	if err := s.db.GetContext(ctx, &c, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get clickbank credentials: %w", err)
	}
	return &c, nil
}

// SaveIntelligence 保存记录并返回新 id
func (s *Storage) SaveIntelligence(ctx context.Context, rec *model.IntelligenceRecord) (string, error) {
	if rec == nil {
		return "", errors.New("nil intelligence record")
	}

	// PostgreSQL 文本与 JSONB 都不接受 NULL 字节
	clean := *rec
	clean.RawContent = cleanText(clean.RawContent)
	clean.PageTitle = cleanText(clean.PageTitle)
	payload, err := json.Marshal(&clean)
	if err != nil {
		return "", fmt.Errorf("encode intelligence record: %w", err)
	}

	id := uuid.NewString()
	q := s.db.Rebind(`INSERT INTO intelligence_records
		(id, source_url, product_name, analysis_method, confidence_score, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, q, id, rec.SourceURL, rec.ProductName, rec.AnalysisMethod,
		rec.ConfidenceScore, string(payload), s.now().UTC()); err != nil {
		return "", fmt.Errorf("save intelligence record: %w", err)
	}
	return id, nil
}

// GetIntelligence 按 id 读取记录
func (s *Storage) GetIntelligence(ctx context.Context, id string) (*StoredIntelligence, error) {
	var row intelligenceRow
	q := s.db.Rebind(`SELECT id, payload, created_at FROM intelligence_records WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get intelligence record: %w", err)
	}

	var rec model.IntelligenceRecord
	if err := json.Unmarshal(row.Payload, &rec); err != nil {
		return nil, fmt.Errorf("decode intelligence record %s: %w", id, err)
	}
	return &StoredIntelligence{ID: row.ID, CreatedAt: row.CreatedAt, Record: &rec}, nil
}

// cleanText 移除无效的 UTF-8 字符与 NULL 字节
func cleanText(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.ReplaceAll(s, "\x00", "")
}
