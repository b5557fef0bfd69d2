// Package store keeps a small SQLite memory of chat traffic and accepted
// online-learning interactions, so the next full retrain can fold in what
// the model picked up between runs.
package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/pandabrain/pandabrain/IO"
)

type Store struct {
	db *sql.DB
}

// Message is one chat line, in chronological order.
type Message struct {
	Role string
	Text string
}

// Open opens (creating if needed) the interaction database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open interaction store %s", path)
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS interactions(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts REAL NOT NULL,
			text TEXT NOT NULL,
			labels TEXT NOT NULL
		)`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "can't create interactions table")
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS messages(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts REAL NOT NULL,
			role TEXT NOT NULL,
			text TEXT NOT NULL
		)`)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "can't create messages table")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func now() float64 {
	return float64(time.Now().UnixMilli()) / 1000.0
}

// RecordInteraction stores one accepted learn_one example.
func (s *Store) RecordInteraction(text string, labels map[string]string) error {
	enc, err := json.Marshal(labels)
	if err != nil {
		return errors.Wrap(err, "can't encode labels")
	}
	_, err = s.db.Exec("INSERT INTO interactions(ts, text, labels) VALUES(?,?,?)",
		now(), text, string(enc))
	return errors.Wrap(err, "can't record interaction")
}

// Interactions returns up to limit stored interactions in chronological
// order, shaped as training samples. limit <= 0 means all.
func (s *Store) Interactions(limit int) ([]IO.Sample, error) {
	q := "SELECT text, labels FROM interactions ORDER BY id"
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(q+" LIMIT ?", limit)
	} else {
		rows, err = s.db.Query(q)
	}
	if err != nil {
		return nil, errors.Wrap(err, "can't read interactions")
	}
	defer rows.Close()

	var samples []IO.Sample
	for rows.Next() {
		var text, enc string
		if err := rows.Scan(&text, &enc); err != nil {
			return nil, errors.Wrap(err, "can't scan interaction")
		}
		labels := make(map[string]string)
		if err := json.Unmarshal([]byte(enc), &labels); err != nil {
			continue // old/garbled row; skip rather than fail the export
		}
		samples = append(samples, IO.Sample{Text: text, Labels: labels})
	}
	return samples, rows.Err()
}

// AddMessage logs one chat line.
func (s *Store) AddMessage(role, text string) error {
	_, err := s.db.Exec("INSERT INTO messages(ts, role, text) VALUES(?,?,?)",
		now(), role, text)
	return errors.Wrap(err, "can't record message")
}

// RecentMessages returns the last n messages in chronological order.
func (s *Store) RecentMessages(n int) ([]Message, error) {
	rows, err := s.db.Query(
		"SELECT role, text FROM messages ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, errors.Wrap(err, "can't read messages")
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Text); err != nil {
			return nil, errors.Wrap(err, "can't scan message")
		}
		msgs = append(msgs, m)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, rows.Err()
}
