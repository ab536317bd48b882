package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"repo-autobot/internal/ledger/repository"
	"repo-autobot/internal/model"
)

var _ repository.DeliveryRepository = (*DeliveryRepo)(nil)

const defaultListLimit = 50

type DeliveryRepo struct {
	db  *DB
	now func() time.Time
}

func NewDeliveryRepo(db *DB) *DeliveryRepo {
	return &DeliveryRepo{db: db, now: time.Now}
}

// Record stores d and reports whether it should be processed. A repeated id
// is rejected unless its earlier attempt failed, in which case the row is
// reset and the redelivery admitted.
func (r *DeliveryRepo) Record(ctx context.Context, d model.Delivery) (bool, error) {
	const query = `INSERT INTO deliveries
		(delivery_id, event, repo, action, reason, status, error, received_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(delivery_id) DO UPDATE SET
			event = excluded.event,
			repo = excluded.repo,
			action = excluded.action,
			reason = excluded.reason,
			status = excluded.status,
			error = excluded.error,
			received_at = excluded.received_at,
			updated_at = excluded.updated_at
		WHERE deliveries.status = ?`

	if d.ID == "" {
		return false, fmt.Errorf("record delivery: empty id")
	}
	now := r.now().UTC()
	if d.ReceivedAt.IsZero() {
		d.ReceivedAt = now
	}
	if d.Status == "" {
		d.Status = model.DeliveryReceived
	}

	res, err := r.db.Writer.ExecContext(ctx, query,
		d.ID, string(d.Event), d.Repo, d.Action, d.Reason, string(d.Status), d.Error, d.ReceivedAt.UTC(), now,
		string(model.DeliveryFailed))
	if err != nil {
		return false, fmt.Errorf("record delivery %s: %w", d.ID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return rows == 1, nil
}

// UpdateStatus sets status and the optional fields that are non-empty.
func (r *DeliveryRepo) UpdateStatus(ctx context.Context, opt repository.UpdateStatusOptions) error {
	const query = `UPDATE deliveries SET
		status = ?,
		action = CASE WHEN ? = '' THEN action ELSE ? END,
		reason = CASE WHEN ? = '' THEN reason ELSE ? END,
		error = ?,
		updated_at = ?
		WHERE delivery_id = ?`

	res, err := r.db.Writer.ExecContext(ctx, query,
		string(opt.Status), opt.Action, opt.Action, opt.Reason, opt.Reason, opt.Error, r.now().UTC(), opt.ID)
	if err != nil {
		return fmt.Errorf("update delivery %s: %w", opt.ID, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update delivery %s: %w", opt.ID, repository.ErrDeliveryNotFound)
	}
	return nil
}

func (r *DeliveryRepo) Get(ctx context.Context, id string) (model.Delivery, error) {
	const query = `SELECT delivery_id, event, repo, action, reason, status, error, received_at, updated_at
		FROM deliveries WHERE delivery_id = ?`

	d, err := scanDelivery(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Delivery{}, fmt.Errorf("get delivery %s: %w", id, repository.ErrDeliveryNotFound)
	}
	if err != nil {
		return model.Delivery{}, fmt.Errorf("get delivery %s: %w", id, err)
	}
	return d, nil
}

// ListRecent returns deliveries newest first.
func (r *DeliveryRepo) ListRecent(ctx context.Context, limit int) ([]model.Delivery, error) {
	const query = `SELECT delivery_id, event, repo, action, reason, status, error, received_at, updated_at
		FROM deliveries ORDER BY received_at DESC, delivery_id LIMIT ?`

	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()

	var out []model.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDelivery(s scanner) (model.Delivery, error) {
	var (
		d             model.Delivery
		event, status string
	)
	err := s.Scan(&d.ID, &event, &d.Repo, &d.Action, &d.Reason, &status, &d.Error, &d.ReceivedAt, &d.UpdatedAt)
	if err != nil {
		return model.Delivery{}, err
	}
	d.Event = model.EventKind(event)
	d.Status = model.DeliveryStatus(status)
	return d, nil
}
