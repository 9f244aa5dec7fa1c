package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: ledgers must be created BEFORE the record tables due to foreign key constraints.
// Amounts are stored as TEXT decimal strings so no precision is lost to REAL.
const schema = `
CREATE TABLE IF NOT EXISTS ledgers (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    version INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
    ledger_id TEXT NOT NULL,
    name TEXT NOT NULL,
    position INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    PRIMARY KEY (ledger_id, name),
    FOREIGN KEY (ledger_id) REFERENCES ledgers(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS purchases (
    id TEXT PRIMARY KEY,
    ledger_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    name TEXT NOT NULL,
    amount TEXT NOT NULL,
    purchaser TEXT NOT NULL,
    timestamp INTEGER NOT NULL,
    created_by TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (ledger_id) REFERENCES ledgers(id) ON DELETE CASCADE,
    FOREIGN KEY (ledger_id, purchaser) REFERENCES members(ledger_id, name)
);

CREATE TABLE IF NOT EXISTS purchase_shares (
    purchase_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    member TEXT NOT NULL,
    amount TEXT NOT NULL,
    PRIMARY KEY (purchase_id, position),
    FOREIGN KEY (purchase_id) REFERENCES purchases(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS repayments (
    id TEXT PRIMARY KEY,
    ledger_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    payer TEXT NOT NULL,
    receiver TEXT NOT NULL,
    amount TEXT NOT NULL,
    timestamp INTEGER NOT NULL,
    created_by TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (ledger_id) REFERENCES ledgers(id) ON DELETE CASCADE,
    FOREIGN KEY (ledger_id, payer) REFERENCES members(ledger_id, name),
    FOREIGN KEY (ledger_id, receiver) REFERENCES members(ledger_id, name)
);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_members_ledger_id ON members(ledger_id);
CREATE INDEX IF NOT EXISTS idx_purchases_ledger_id ON purchases(ledger_id, seq);
CREATE INDEX IF NOT EXISTS idx_purchase_shares_purchase_id ON purchase_shares(purchase_id);
CREATE INDEX IF NOT EXISTS idx_repayments_ledger_id ON repayments(ledger_id, seq);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
