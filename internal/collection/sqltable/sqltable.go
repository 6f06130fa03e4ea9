// Package sqltable implements collection.Collection over a database/sql
// handle. The same statements serve SQLite and Postgres; only placeholders and
// timestamp encoding differ.
package sqltable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/lostfound/internal/collection"
	"github.com/vbonduro/lostfound/internal/domain"
)

const selectColumns = "id, name, description, location, date, status, photo_url, created_at, updated_at"

// sqliteTimeLayout is fixed width so that TEXT ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

type dialect struct {
	name        string
	placeholder func(n int) string
	encodeTime  func(t time.Time) any
}

var sqliteDialect = dialect{
	name:        "sqlite",
	placeholder: func(int) string { return "?" },
	encodeTime:  func(t time.Time) any { return t.UTC().Format(sqliteTimeLayout) },
}

var postgresDialect = dialect{
	name:        "postgres",
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	encodeTime:  func(t time.Time) any { return t.UTC() },
}

type Table struct {
	db      *sql.DB
	table   string
	dialect dialect
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewSQLite returns a collection over the items table of a SQLite database
// opened with db.Open.
func NewSQLite(db *sql.DB, logger *slog.Logger) *Table {
	return newTable(db, "items", sqliteDialect, logger)
}

// NewPostgres returns a collection over table in a Postgres database.
func NewPostgres(db *sql.DB, table string, logger *slog.Logger) *Table {
	return newTable(db, table, postgresDialect, logger)
}

func newTable(db *sql.DB, table string, d dialect, logger *slog.Logger) *Table {
	return &Table{
		db:      db,
		table:   table,
		dialect: d,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (t *Table) Select(ctx context.Context, q collection.Query) ([]*domain.Item, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var (
		sb   strings.Builder
		args []any
	)
	fmt.Fprintf(&sb, "SELECT %s FROM %s", selectColumns, t.table)
	for i, f := range q.Filters {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		args = append(args, f.Value)
		fmt.Fprintf(&sb, "%s = %s", f.Column, t.dialect.placeholder(len(args)))
	}
	if q.OrderBy != "" {
		dir := "DESC"
		if q.Ascending {
			dir = "ASC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", q.OrderBy, dir)
	}

	rows, err := t.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select items: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			t.logger.Error("failed to close rows", "error", err)
		}
	}()

	items := make([]*domain.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

func (t *Table) SelectOne(ctx context.Context, id string) (*domain.Item, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = %s", selectColumns, t.table, t.dialect.placeholder(1))
	item, err := scanItem(t.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, collection.ErrRowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (t *Table) Insert(ctx context.Context, in domain.NewItem) (*domain.Item, error) {
	p := t.dialect.placeholder
	query := fmt.Sprintf(`INSERT INTO %s (id, name, description, location, date, status, photo_url, created_at)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s) RETURNING %s`,
		t.table, p(1), p(2), p(3), p(4), p(5), p(6), p(7), p(8), selectColumns)

	item, err := scanItem(t.db.QueryRowContext(ctx, query,
		t.newID(), in.Name, in.Description, in.Location, in.Date, string(in.Status),
		nullString(in.PhotoURL), t.dialect.encodeTime(t.now()),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}
	return item, nil
}

func (t *Table) Update(ctx context.Context, id string, u domain.ItemUpdate) (*domain.Item, error) {
	var (
		sets []string
		args []any
	)
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = %s", column, t.dialect.placeholder(len(args))))
	}
	if u.Name != nil {
		set(collection.ColumnName, *u.Name)
	}
	if u.Description != nil {
		set(collection.ColumnDescription, *u.Description)
	}
	if u.Location != nil {
		set(collection.ColumnLocation, *u.Location)
	}
	if u.Date != nil {
		set(collection.ColumnDate, *u.Date)
	}
	if u.PhotoURL != nil {
		set(collection.ColumnPhotoURL, nullString(*u.PhotoURL))
	}
	if u.UpdatedAt != nil {
		set(collection.ColumnUpdatedAt, t.dialect.encodeTime(*u.UpdatedAt))
	}
	if len(sets) == 0 {
		return t.SelectOne(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s RETURNING %s",
		t.table, strings.Join(sets, ", "), t.dialect.placeholder(len(args)), selectColumns)

	item, err := scanItem(t.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, collection.ErrRowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return item, nil
}

func (t *Table) Delete(ctx context.Context, id string) ([]*domain.Item, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = %s RETURNING %s", t.table, t.dialect.placeholder(1), selectColumns)

	rows, err := t.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete item: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			t.logger.Error("failed to close rows", "error", err)
		}
	}()

	deleted := make([]*domain.Item, 0, 1)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deleted item: %w", err)
		}
		deleted = append(deleted, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deleted items: %w", err)
	}
	return deleted, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*domain.Item, error) {
	var (
		item      domain.Item
		status    string
		photoURL  sql.NullString
		createdAt timestamp
		updatedAt timestamp
	)
	if err := s.Scan(&item.ID, &item.Name, &item.Description, &item.Location, &item.Date,
		&status, &photoURL, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	item.Status = domain.Status(status)
	item.PhotoURL = photoURL.String
	item.CreatedAt = createdAt.Time
	if updatedAt.Valid {
		t := updatedAt.Time
		item.UpdatedAt = &t
	}
	return &item, nil
}

// timestamp scans TEXT (SQLite) and timestamptz (Postgres) columns alike.
type timestamp struct {
	Time  time.Time
	Valid bool
}

func (ts *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.Time, ts.Valid = time.Time{}, false
		return nil
	case time.Time:
		ts.Time, ts.Valid = v.UTC(), true
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (ts *timestamp) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	ts.Time, ts.Valid = t.UTC(), true
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
