package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"catalogsite/internal/database"
	"catalogsite/internal/search"
)

var ErrNotFound = errors.New("index snapshot not found")

type Snapshot struct {
	Locale  string
	Items   []search.Item
	BuiltAt time.Time
}

type SnapshotInfo struct {
	Locale    string    `json:"locale"`
	ItemCount int       `json:"itemCount"`
	BuiltAt   time.Time `json:"builtAt"`
}

// Store keeps the last built index of each locale in Postgres.
type Store struct {
	DB database.DB
}

func NewStore(db database.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Save(ctx context.Context, locale string, items []search.Item, builtAt time.Time) error {
	if items == nil {
		items = []search.Item{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s index: %w", locale, err)
	}

	query := `
		INSERT INTO search_index_snapshots (locale, items, item_count, built_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (locale) DO UPDATE
		SET items = EXCLUDED.items, item_count = EXCLUDED.item_count, built_at = EXCLUDED.built_at
	`
	if _, err := s.DB.Exec(ctx, query, locale, payload, len(items), builtAt.UTC()); err != nil {
		return fmt.Errorf("save %s index: %w", locale, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, locale string) (Snapshot, error) {
	query := `SELECT items, built_at FROM search_index_snapshots WHERE locale = $1`

	var (
		payload []byte
		snap    = Snapshot{Locale: locale}
	)
	err := s.DB.QueryRow(ctx, query, locale).Scan(&payload, &snap.BuiltAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load %s index: %w", locale, err)
	}
	if err := json.Unmarshal(payload, &snap.Items); err != nil {
		return Snapshot{}, fmt.Errorf("decode %s index: %w", locale, err)
	}
	return snap, nil
}

func (s *Store) List(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.DB.Query(ctx, `SELECT locale, item_count, built_at FROM search_index_snapshots ORDER BY locale`)
	if err != nil {
		return nil, fmt.Errorf("list index snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.Locale, &info.ItemCount, &info.BuiltAt); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}
