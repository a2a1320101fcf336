// Package eventstore is the relational EventStore: transactional
// persistence of media assets, person/vehicle events, job-ledger rows, and
// notifications. Grounded on the teacher's internal/storage/postgres.go
// (pgxpool.Pool, QueryRow scanning) generalized from face-recognition
// tables to the camera-analytics schema in the Python predecessor's
// core/oi_core/models.py.
package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightloop/camwatch/internal/models"
)

// uniqueViolation is the Postgres error code for a unique-constraint
// violation, used to detect the frame-asset path collision spec §4.5
// requires recovering from.
const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() { s.pool.Close() }

// WithTx runs fn inside a single transaction, committing on success and
// rolling back on any returned error, matching spec §4.5's "inside a single
// transaction" requirement.
func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetOrCreateMediaAsset inserts a MediaAsset row, and on a unique-path
// violation rolls back just that insert (the caller's surrounding
// transaction continues) and re-reads the existing row by path — spec
// §4.5 step 1's idempotent frame-asset de-dup, and design note §9's
// catch-and-reread fallback for stores without UPSERT-on-path.
func (s *Store) GetOrCreateMediaAsset(ctx context.Context, tx pgx.Tx, mediaType models.MediaType, path string, attrs map[string]any) (*models.MediaAsset, error) {
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("marshal attributes: %w", err)
	}

	asset := &models.MediaAsset{ID: uuid.New(), MediaType: mediaType, Path: path, Attributes: attrs}

	savepoint, err := tx.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin savepoint: %w", err)
	}

	err = savepoint.QueryRow(ctx,
		`INSERT INTO media_assets (id, media_type, path, attributes) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		asset.ID, asset.MediaType, asset.Path, attrsJSON,
	).Scan(&asset.CreatedAt)
	if err == nil {
		if err := savepoint.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit savepoint: %w", err)
		}
		return asset, nil
	}

	_ = savepoint.Rollback(ctx)

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil, fmt.Errorf("insert media asset: %w", err)
	}

	existing := &models.MediaAsset{}
	var existingAttrs []byte
	err = tx.QueryRow(ctx,
		`SELECT id, media_type, path, attributes, created_at FROM media_assets WHERE path = $1`, path,
	).Scan(&existing.ID, &existing.MediaType, &existing.Path, &existingAttrs, &existing.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("re-read media asset after collision: %w", err)
	}
	_ = json.Unmarshal(existingAttrs, &existing.Attributes)
	return existing, nil
}

func (s *Store) CreatePersonEvent(ctx context.Context, tx pgx.Tx, e *models.PersonEvent) error {
	e.ID = uuid.New()
	return tx.QueryRow(ctx,
		`INSERT INTO person_events (id, camera, occurred_at, frame_asset_id, crop_asset_id, score)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`,
		e.ID, e.Camera, e.OccurredAt, e.FrameAssetID, e.CropAssetID, e.Score,
	).Scan(&e.CreatedAt)
}

func (s *Store) CreateVehicleEvent(ctx context.Context, tx pgx.Tx, e *models.VehicleEvent) error {
	e.ID = uuid.New()
	if e.Label == "" {
		e.Label = "vehicle"
	}
	return tx.QueryRow(ctx,
		`INSERT INTO vehicle_events (id, camera, occurred_at, frame_asset_id, crop_asset_id, score, label)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`,
		e.ID, e.Camera, e.OccurredAt, e.FrameAssetID, e.CropAssetID, e.Score, e.Label,
	).Scan(&e.CreatedAt)
}

func (s *Store) CreateJobRecord(ctx context.Context, tx pgx.Tx, jobType string, status models.JobStatus, payload map[string]any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal job payload: %w", err)
	}
	now := time.Now().UTC()
	_, err = tx.Exec(ctx,
		`INSERT INTO jobs (id, job_type, status, payload, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $5)`,
		uuid.New(), jobType, status, payloadJSON, now,
	)
	return err
}

// CreateNotification persists the outcome of a delivery attempt. Run
// outside the event writer's transaction — a failed notification write
// must never roll back an already-committed event.
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	payloadJSON, err := json.Marshal(n.Payload)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	n.ID = uuid.New()
	return s.pool.QueryRow(ctx,
		`INSERT INTO notifications (id, event_type, event_id, status, payload, sent_at, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`,
		n.ID, n.EventType, n.EventID, n.Status, payloadJSON, n.SentAt, n.Error,
	).Scan(&n.CreatedAt)
}
