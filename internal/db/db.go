package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"checkinbot/internal/config"
	"checkinbot/internal/db/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

var (
	ErrAttendeeNotFound = errors.New("attendee is not registered for this event")
	ErrAlreadyCheckedIn = errors.New("attendee has already checked in")
)

type DB struct {
	*pgxpool.Pool
	events    string
	attendees string
}

func New(dbCfg config.DatabaseConfig) (*DB, error) {
	// Create a configuration object
	cfg, err := pgxpool.ParseConfig(dbCfg.URL())
	if err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	// Configure connection pool and statement cache
	cfg.MaxConns = dbCfg.MaxConns
	cfg.MinConns = 2
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating connection pool: %w", err)
	}

	return &DB{
		Pool:      pool,
		events:    pq.QuoteIdentifier(dbCfg.EventsTable),
		attendees: pq.QuoteIdentifier(dbCfg.AttendeesTable),
	}, nil
}

// CheckIn marks a registered attendee as present. It fails when the attendee
// is unknown or was already checked in.
func (db *DB) CheckIn(ctx context.Context, eventID uuid.UUID, userID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET checked_in_at = $1
		WHERE event_id = $2 AND user_id = $3 AND checked_in_at IS NULL`, db.attendees)

	tag, err := db.Exec(ctx, query, time.Now().UTC(), eventID.String(), userID)
	if err != nil {
		return fmt.Errorf("error updating check-in: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Nothing updated: tell apart unknown attendees from repeated check-ins
	record, err := db.GetCheckInRecord(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrAttendeeNotFound
	}
	return ErrAlreadyCheckedIn
}

// GetCheckInRecord returns nil when the attendee is not registered.
func (db *DB) GetCheckInRecord(ctx context.Context, eventID uuid.UUID, userID string) (*models.CheckInRecord, error) {
	query := fmt.Sprintf(`
		SELECT user_id, event_id, name, checked_in_at
		FROM %s
		WHERE event_id = $1 AND user_id = $2`, db.attendees)

	record := &models.CheckInRecord{}
	err := db.QueryRow(ctx, query, eventID.String(), userID).Scan(
		&record.UserID,
		&record.EventID,
		&record.Name,
		&record.CheckedInAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting check-in record: %w", err)
	}
	return record, nil
}

// ListCheckInRecords returns one page of an event's attendees ordered by name.
func (db *DB) ListCheckInRecords(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]*models.CheckInRecord, error) {
	query := fmt.Sprintf(`
		SELECT user_id, event_id, name, checked_in_at
		FROM %s
		WHERE event_id = $1
		ORDER BY lower(name), user_id
		LIMIT $2 OFFSET $3`, db.attendees)

	rows, err := db.Query(ctx, query, eventID.String(), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.CheckInRecord
	for rows.Next() {
		record := &models.CheckInRecord{}
		if err := rows.Scan(
			&record.UserID,
			&record.EventID,
			&record.Name,
			&record.CheckedInAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// RegisterAttendee adds an attendee to an event or updates their display
// name. The check-in status is left untouched.
func (db *DB) RegisterAttendee(ctx context.Context, eventID uuid.UUID, userID, name string) (*models.CheckInRecord, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (event_id, user_id, name, registered_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, user_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING user_id, event_id, name, checked_in_at`, db.attendees)

	record := &models.CheckInRecord{}
	err := db.QueryRow(ctx, query, eventID.String(), userID, name, time.Now().UTC()).Scan(
		&record.UserID,
		&record.EventID,
		&record.Name,
		&record.CheckedInAt,
	)
	if err != nil {
		return nil, fmt.Errorf("error registering attendee: %w", err)
	}
	return record, nil
}

func (db *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, server_id, name, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)`, db.events)

	_, err := db.Exec(ctx, query,
		event.ID.String(),
		event.ServerID,
		event.Name,
		event.CreatedBy,
		event.CreatedAt,
	)
	return err
}

// GetEvent returns nil when the event does not exist on the server.
func (db *DB) GetEvent(ctx context.Context, serverID string, eventID uuid.UUID) (*models.Event, error) {
	query := fmt.Sprintf(`
		SELECT id, server_id, name, created_by, created_at
		FROM %s
		WHERE id = $1 AND server_id = $2`, db.events)

	event := &models.Event{}
	err := db.QueryRow(ctx, query, eventID.String(), serverID).Scan(
		&event.ID,
		&event.ServerID,
		&event.Name,
		&event.CreatedBy,
		&event.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting event: %w", err)
	}
	return event, nil
}

// ListServerEvents returns the most recent events of a server.
func (db *DB) ListServerEvents(ctx context.Context, serverID string, limit int) ([]*models.Event, error) {
	query := fmt.Sprintf(`
		SELECT id, server_id, name, created_by, created_at
		FROM %s
		WHERE server_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, db.events)

	rows, err := db.Query(ctx, query, serverID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		if err := rows.Scan(
			&event.ID,
			&event.ServerID,
			&event.Name,
			&event.CreatedBy,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
