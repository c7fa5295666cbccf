// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/chainvote/models"
)

// Journal is the append-only log of write transactions. A nil *Journal is
// valid and records nothing.
type Journal struct {
	db *sql.DB
}

func NewJournal(db *sql.DB) *Journal {
	if db == nil {
		return nil
	}
	return &Journal{db: db}
}

// Record stores rec, filling in ID and CreatedAt when they are empty.
func (j *Journal) Record(ctx context.Context, rec models.TxRecord) (models.TxRecord, error) {
	if j == nil {
		return rec, nil
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO tx_log (id, session_id, kind, from_address, tx_hash, status, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.SessionID, rec.Kind, rec.From, rec.TxHash, rec.Status, rec.Detail, rec.CreatedAt)
	if err != nil {
		return rec, fmt.Errorf("failed to record transaction: %w", err)
	}
	return rec, nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]models.TxRecord, error) {
	if j == nil {
		return nil, nil
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, session_id, kind, from_address, tx_hash, status, detail, created_at
		FROM tx_log
		ORDER BY created_at DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ForSession returns up to limit entries recorded by one session, newest first.
func (j *Journal) ForSession(ctx context.Context, sessionID string, limit int) ([]models.TxRecord, error) {
	if j == nil {
		return nil, nil
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, session_id, kind, from_address, tx_hash, status, detail, created_at
		FROM tx_log
		WHERE session_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]models.TxRecord, error) {
	records := []models.TxRecord{}
	for rows.Next() {
		var rec models.TxRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Kind, &rec.From, &rec.TxHash, &rec.Status, &rec.Detail, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return records, nil
}
