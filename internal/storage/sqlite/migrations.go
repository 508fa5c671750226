package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database.
// These run on startup to ensure tables exist. Amounts are stored as
// TEXT to keep decimal values exact.
const schema = `
CREATE TABLE IF NOT EXISTS splits (
    id TEXT PRIMARY KEY,
    token TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    total_amount TEXT NOT NULL,
    participant_target INTEGER NOT NULL,
    amount_per_person TEXT NOT NULL,
    creator_address TEXT NOT NULL,
    creator_chain TEXT NOT NULL,
    receive_token_address TEXT NOT NULL DEFAULT '',
    receive_token_symbol TEXT NOT NULL DEFAULT '',
    receive_token_decimals INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS participants (
    split_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    address TEXT NOT NULL,
    chain TEXT NOT NULL,
    amount TEXT NOT NULL,
    paid INTEGER NOT NULL DEFAULT 0,
    paid_at INTEGER,
    tx_reference TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (split_id, position),
    FOREIGN KEY (split_id) REFERENCES splits(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_splits_token ON splits(token);
CREATE INDEX IF NOT EXISTS idx_participants_split_id ON participants(split_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
