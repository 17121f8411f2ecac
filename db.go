package pixeldraw

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
)

var zstdEncPool = sync.Pool{
	New: func() interface{} {
		enc, _ := zstd.NewWriter(nil)
		return enc
	},
}

var zstdDecPool = sync.Pool{
	New: func() interface{} {
		dec, _ := zstd.NewReader(nil)
		return dec
	},
}

func compress(b []byte) []byte {
	enc := zstdEncPool.Get().(*zstd.Encoder)
	defer zstdEncPool.Put(enc)
	return enc.EncodeAll(b, make([]byte, 0, len(b)))
}

func decompress(b []byte) ([]byte, error) {
	dec := zstdDecPool.Get().(*zstd.Decoder)
	defer zstdDecPool.Put(dec)
	return dec.DecodeAll(b, nil)
}

// DB is a Store kept in a SQLite database. Values are stored zstd
// compressed.
type DB struct {
	db *sql.DB
}

// NewDB opens, creating if necessary, the database in file.
func NewDB(file string) (*DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS storage (key TEXT PRIMARY KEY NOT NULL, value BLOB NOT NULL, updated INTEGER NOT NULL DEFAULT (strftime('%s', 'now')))"); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{
		db: db,
	}, nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.db.Close()
}

// Get returns the value stored under key, or nil if there is none.
func (db *DB) Get(key string) ([]byte, error) {
	var value []byte
	switch err := db.db.QueryRow("SELECT value FROM storage WHERE key = ?", key).Scan(&value); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		b, err := decompress(value)
		if err != nil {
			return nil, fmt.Errorf("pixeldraw: corrupt value for %q: %w", key, err)
		}
		return b, nil
	default:
		return nil, err
	}
}

// Put stores value under key, replacing any previous value.
func (db *DB) Put(key string, value []byte) error {
	if _, err := db.db.Exec("INSERT OR REPLACE INTO storage (key, value, updated) VALUES (?, ?, strftime('%s', 'now'))", key, compress(value)); err != nil {
		return err
	}
	return nil
}

// Delete removes any value stored under key.
func (db *DB) Delete(key string) error {
	if _, err := db.db.Exec("DELETE FROM storage WHERE key = ?", key); err != nil {
		return err
	}
	return nil
}

// Keys returns every key in the database.
func (db *DB) Keys() ([]string, error) {
	rows, err := db.db.Query("SELECT key FROM storage ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}
