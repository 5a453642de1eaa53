package store

const SchemaVersion = 1

const schemaSQL = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

-- One row per distinct essay body
CREATE TABLE IF NOT EXISTS essays (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    score INTEGER NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_essays_score ON essays(score);

-- A split run records the parameters of one call to the splitter
CREATE TABLE IF NOT EXISTS split_runs (
    id TEXT PRIMARY KEY,
    seed INTEGER NOT NULL,
    frac_train REAL NOT NULL,
    frac_dev REAL NOT NULL,
    frac_test REAL NOT NULL,
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS split_members (
    run_id TEXT NOT NULL REFERENCES split_runs(id) ON DELETE CASCADE,
    essay_id TEXT NOT NULL REFERENCES essays(id) ON DELETE CASCADE,
    split TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (run_id, essay_id)
);

CREATE INDEX IF NOT EXISTS idx_split_members_split ON split_members(run_id, split);
`

func GetSchema() string {
	return schemaSQL
}
