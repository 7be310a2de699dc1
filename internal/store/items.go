package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"plan-cli/internal/model"
)

const itemColumns = `id, title, description, has_description, level, position,
	title_json, description_json, tags_json, dates_json,
	created_at_unixms, updated_at_unixms`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(r scanner) (model.PlanItem, error) {
	var (
		it                   model.PlanItem
		hasDesc              int
		titleJSON, descJSON  sql.NullString
		tagsJSON, datesJSON  sql.NullString
		createdMS, updatedMS int64
	)
	if err := r.Scan(&it.ID, &it.Title, &it.Description, &hasDesc, &it.Level, &it.Position,
		&titleJSON, &descJSON, &tagsJSON, &datesJSON, &createdMS, &updatedMS); err != nil {
		return model.PlanItem{}, err
	}
	it.HasDescription = hasDesc != 0
	for _, f := range []struct {
		src sql.NullString
		dst any
	}{
		{titleJSON, &it.TitleContent},
		{descJSON, &it.DescriptionContent},
		{tagsJSON, &it.Tags},
		{datesJSON, &it.Dates},
	} {
		if !f.src.Valid || strings.TrimSpace(f.src.String) == "" {
			continue
		}
		if err := json.Unmarshal([]byte(f.src.String), f.dst); err != nil {
			return model.PlanItem{}, err
		}
	}
	it.CreatedAt = time.UnixMilli(createdMS).UTC()
	it.UpdatedAt = time.UnixMilli(updatedMS).UTC()
	return it, nil
}

func nullJSON(v any, empty bool) (sql.NullString, error) {
	if empty {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, x execer, it model.PlanItem) error {
	titleJSON, err := nullJSON(it.TitleContent, len(it.TitleContent) == 0)
	if err != nil {
		return err
	}
	descJSON, err := nullJSON(it.DescriptionContent, len(it.DescriptionContent) == 0)
	if err != nil {
		return err
	}
	tagsJSON, err := nullJSON(it.Tags, len(it.Tags) == 0)
	if err != nil {
		return err
	}
	datesJSON, err := nullJSON(it.Dates, len(it.Dates) == 0)
	if err != nil {
		return err
	}
	hasDesc := 0
	if it.HasDescription {
		hasDesc = 1
	}
	_, err = x.ExecContext(ctx, `INSERT OR REPLACE INTO items(`+itemColumns+`)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.Title, it.Description, hasDesc, it.Level, it.Position,
		titleJSON, descJSON, tagsJSON, datesJSON,
		it.CreatedAt.UnixMilli(), it.UpdatedAt.UnixMilli())
	return err
}

// Load returns every item in display order.
func (s *Store) Load(ctx context.Context) ([]model.PlanItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+itemColumns+` FROM items ORDER BY position, created_at_unixms`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlanItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (model.PlanItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, strings.TrimSpace(id))
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PlanItem{}, NotFoundError{Kind: "item", ID: id}
	}
	return it, err
}

// Save replaces the whole item table with items in one transaction.
func (s *Store) Save(ctx context.Context, items []model.PlanItem) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return err
	}
	for _, it := range items {
		if err := upsert(ctx, tx, it); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Apply writes one batch of changes atomically.
func (s *Store) Apply(ctx context.Context, ch model.Changes) error {
	if ch.Empty() {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range ch.Deletes {
		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
			return err
		}
	}
	for _, it := range ch.Upserts {
		if err := upsert(ctx, tx, it); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Debug("applied changes",
		zap.Int("upserts", len(ch.Upserts)),
		zap.Int("deletes", len(ch.Deletes)))
	return nil
}

// Append adds it after the last item. An empty id is generated and zero
// timestamps are set to now.
func (s *Store) Append(ctx context.Context, it model.PlanItem) (model.PlanItem, error) {
	if strings.TrimSpace(it.ID) == "" {
		it.ID = newItemID()
	}
	var maxPos sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(position) FROM items`).Scan(&maxPos); err != nil {
		return model.PlanItem{}, err
	}
	it.Position = 0
	if maxPos.Valid {
		it.Position = int(maxPos.Int64) + 1
	}
	now := time.Now().UTC()
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
	}
	if it.UpdatedAt.IsZero() {
		it.UpdatedAt = now
	}
	if it.Description != "" {
		it.HasDescription = true
	}
	if err := upsert(ctx, s.db, it); err != nil {
		return model.PlanItem{}, err
	}
	return it, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return NotFoundError{Kind: "item", ID: id}
	}
	return nil
}
