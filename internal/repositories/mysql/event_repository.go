package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/biyonik/ticketbox-core/internal/models"
	"github.com/biyonik/ticketbox-core/pkg/database"
)

type EventRepository struct {
	db *sql.DB
}

const eventColumns = `id, name, online, address, org_name, org_info, status,
	start_date, end_date, host_id, approver_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	event := &models.Event{}
	var approver sql.NullInt64
	err := row.Scan(
		&event.ID, &event.Name, &event.Online, &event.Address, &event.OrgName,
		&event.OrgInfo, &event.Status, &event.StartDate, &event.EndDate,
		&event.HostID, &approver, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	event.ApproverID = int64Ptr(approver)
	return event, nil
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, online, address, org_name, org_info, status,
			start_date, end_date, host_id, approver_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, query,
		event.Name, event.Online, event.Address, event.OrgName, event.OrgInfo,
		event.Status, event.StartDate, event.EndDate, event.HostID,
		nullInt64(event.ApproverID), event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	event.ID = id
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id int64) (*models.Event, error) {
	return r.findByID(ctx, id, "")
}

func (r *EventRepository) FindByIDForUpdate(ctx context.Context, id int64) (*models.Event, error) {
	return r.findByID(ctx, id, database.LockClause(ctx))
}

func (r *EventRepository) findByID(ctx context.Context, id int64, lock string) (*models.Event, error) {
	query := "SELECT " + eventColumns + " FROM events WHERE id = ?" + lock

	event, err := scanEvent(database.Executor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, models.ErrEventNotFound, "find event")
	}
	return event, nil
}

func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET name = ?, online = ?, address = ?, org_name = ?, org_info = ?,
			start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, query,
		event.Name, event.Online, event.Address, event.OrgName, event.OrgInfo,
		event.StartDate, event.EndDate, event.UpdatedAt,
		event.ID, models.EventPending,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return expectOneRow(result, "update event")
}

func (r *EventRepository) TransitionStatus(ctx context.Context, id int64, from, to models.EventStatus, approverID *int64, at time.Time) error {
	query := `
		UPDATE events
		SET status = ?, approver_id = COALESCE(?, approver_id), updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := database.Executor(ctx, r.db).ExecContext(ctx, query,
		to, nullInt64(approverID), at, id, from)
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}
	return expectOneRow(result, "transition event")
}

func (r *EventRepository) List(ctx context.Context, filter models.EventFilter, page models.Page) ([]*models.Event, error) {
	var (
		where []string
		args  []any
	)

	if filter.Status != nil {
		where = append(where, "e.status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Phase != nil {
		where = append(where, "e.status IN (?, ?, ?)")
		args = append(args, models.EventUpcoming, models.EventRunning, models.EventEnded)

		switch *filter.Phase {
		case models.EventUpcoming:
			where = append(where, "e.start_date > ?")
			args = append(args, filter.At)
		case models.EventRunning:
			where = append(where, "e.start_date <= ? AND e.end_date >= ?")
			args = append(args, filter.At, filter.At)
		case models.EventEnded:
			where = append(where, "e.end_date < ?")
			args = append(args, filter.At)
		}
	}
	if filter.HostID != nil {
		where = append(where, "e.host_id = ?")
		args = append(args, *filter.HostID)
	}
	if filter.ApproverID != nil {
		where = append(where, "e.approver_id = ?")
		args = append(args, *filter.ApproverID)
	}
	if filter.CategoryID != nil {
		where = append(where, "EXISTS (SELECT 1 FROM event_categories ec WHERE ec.event_id = e.id AND ec.category_id = ?)")
		args = append(args, *filter.CategoryID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, "e.name LIKE ?")
		args = append(args, "%"+escapeLike(q)+"%")
	}

	query := "SELECT " + prefixColumns("e.", eventColumns) + " FROM events e"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.start_date ASC, e.id ASC LIMIT ? OFFSET ?"
	args = append(args, page.Limit(), page.Offset())

	rows, err := database.Executor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *EventRepository) SetCategories(ctx context.Context, eventID int64, categoryIDs []int64) error {
	return replaceLinks(ctx, database.Executor(ctx, r.db), "event_categories", "event_id", "category_id", eventID, categoryIDs)
}

func (r *EventRepository) CategoryIDs(ctx context.Context, eventID int64) ([]int64, error) {
	return selectLinks(ctx, database.Executor(ctx, r.db), "event_categories", "event_id", "category_id", eventID)
}

func prefixColumns(prefix, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
