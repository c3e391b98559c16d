package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
//
// idx_shifts_one_active is what keeps an employment from having two open shifts:
// concurrent clock-ins race on the index, not on an application-level check.
const schema = `
CREATE TABLE IF NOT EXISTS companies (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
    id TEXT PRIMARY KEY,
    company_id TEXT NOT NULL,
    name TEXT NOT NULL,
    FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS employments (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    position_id TEXT NOT NULL,
    start_date TEXT NOT NULL,
    end_date TEXT,
    round_mode TEXT NOT NULL DEFAULT 'exact'
        CHECK (round_mode IN ('exact', 'quarter_hour', 'half_hour', 'custom')),
    round_interval INTEGER,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    CHECK (round_mode <> 'custom' OR round_interval > 0),
    FOREIGN KEY (position_id) REFERENCES positions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS shifts (
    id TEXT PRIMARY KEY,
    employment_id TEXT NOT NULL,
    date TEXT NOT NULL,
    start_time INTEGER NOT NULL,
    end_time INTEGER,
    description TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    CHECK (end_time IS NULL OR end_time > start_time),
    FOREIGN KEY (employment_id) REFERENCES employments(id) ON DELETE CASCADE
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_one_active ON shifts(employment_id) WHERE end_time IS NULL;
CREATE INDEX IF NOT EXISTS idx_shifts_employment_id ON shifts(employment_id);
CREATE INDEX IF NOT EXISTS idx_shifts_date ON shifts(date);
CREATE INDEX IF NOT EXISTS idx_employments_user_id ON employments(user_id);
CREATE INDEX IF NOT EXISTS idx_positions_company_id ON positions(company_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
