package database

// KVSchemaSQL creates the key/value table that backs the persisted session.
// It plays the role browser-local storage plays for the web storefront.
const KVSchemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
