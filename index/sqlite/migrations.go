package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id          TEXT PRIMARY KEY,
    account_id  TEXT NOT NULL,
    folder      TEXT NOT NULL,
    subject     TEXT,
    from_addrs  TEXT,
    to_addrs    TEXT,
    date        TEXT NOT NULL,
    body_text   TEXT,
    category    TEXT NOT NULL DEFAULT 'Uncategorized'
);

CREATE INDEX IF NOT EXISTS idx_documents_account ON documents(account_id);
CREATE INDEX IF NOT EXISTS idx_documents_category ON documents(category);
CREATE INDEX IF NOT EXISTS idx_documents_date ON documents(date DESC);

CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
    subject, body_text, from_addrs,
    content='documents', content_rowid='rowid'
);

CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
    INSERT INTO documents_fts(rowid, subject, body_text, from_addrs)
    VALUES (new.rowid, new.subject, new.body_text, new.from_addrs);
END;

CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
    INSERT INTO documents_fts(documents_fts, rowid, subject, body_text, from_addrs)
    VALUES ('delete', old.rowid, old.subject, old.body_text, old.from_addrs);
END;

CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE ON documents BEGIN
    INSERT INTO documents_fts(documents_fts, rowid, subject, body_text, from_addrs)
    VALUES ('delete', old.rowid, old.subject, old.body_text, old.from_addrs);
    INSERT INTO documents_fts(rowid, subject, body_text, from_addrs)
    VALUES (new.rowid, new.subject, new.body_text, new.from_addrs);
END;
`
