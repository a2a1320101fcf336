package eventstore

import "context"

// schema is the relational layout named in spec §6. The out-of-scope HTTP
// surface owns real migrations; this repository only needs the tables to
// exist, so EnsureSchema issues idempotent CREATE TABLE IF NOT EXISTS
// statements on startup rather than carrying a migration tool dependency.
const schema = `
CREATE TABLE IF NOT EXISTS media_assets (
	id UUID PRIMARY KEY,
	media_type TEXT NOT NULL,
	path TEXT NOT NULL UNIQUE,
	attributes JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS person_events (
	id UUID PRIMARY KEY,
	camera TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	frame_asset_id UUID NOT NULL REFERENCES media_assets(id),
	crop_asset_id UUID NOT NULL REFERENCES media_assets(id),
	score INTEGER,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_person_events_occurred_at ON person_events(occurred_at);

CREATE TABLE IF NOT EXISTS vehicle_events (
	id UUID PRIMARY KEY,
	camera TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	frame_asset_id UUID NOT NULL REFERENCES media_assets(id),
	crop_asset_id UUID NOT NULL REFERENCES media_assets(id),
	score INTEGER,
	label TEXT NOT NULL DEFAULT 'vehicle',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_vehicle_events_occurred_at ON vehicle_events(occurred_at);

CREATE TABLE IF NOT EXISTS notifications (
	id UUID PRIMARY KEY,
	event_type TEXT NOT NULL,
	event_id UUID,
	status TEXT NOT NULL DEFAULT 'pending',
	payload JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	sent_at TIMESTAMPTZ,
	error TEXT
);

CREATE TABLE IF NOT EXISTS jobs (
	id UUID PRIMARY KEY,
	job_type VARCHAR(64) NOT NULL,
	status TEXT NOT NULL DEFAULT 'queued',
	payload JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	error TEXT
);

-- Schema-only: no component in this repository reads or writes settings.
-- Present because spec names it as part of the persisted state layout and
-- the out-of-scope HTTP surface manages motion parameters through it.
CREATE TABLE IF NOT EXISTS settings (
	id UUID PRIMARY KEY,
	key TEXT NOT NULL UNIQUE,
	value JSONB,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}
