// Package journal records socket traffic in a SQLite database so sessions
// can be inspected or replayed later.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/SvenDH/go-card-client/client"
)

var ErrNoSession = errors.New("no such session")

type Repository struct {
	Db *sql.DB
}

type Session struct {
	Id      string
	User    string
	Game    string
	Started time.Time
	Frames  int
}

type Frame struct {
	Seq       int64
	Direction client.Direction
	Body      []byte
	At        time.Time
}

// Open opens or creates the journal at path. ":memory:" gives a private
// in-memory journal.
func Open(path string) (*Repository, error) {
	dsn := path
	if path != ":memory:" {
		// concurrent writers wait up to 5s for the lock
		dsn = path + "?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	repo, err := NewRepository(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func NewRepository(db *sql.DB) (*Repository, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			id TEXT PRIMARY KEY,
			user TEXT NOT NULL,
			game TEXT NOT NULL,
			started INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS frame (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			session TEXT NOT NULL REFERENCES session(id),
			direction TEXT NOT NULL,
			body BLOB NOT NULL,
			at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS frame_session ON frame(session, seq);
	`)
	if err != nil {
		return nil, fmt.Errorf("error in db execution: %w", err)
	}
	return &Repository{Db: db}, nil
}

func (repo *Repository) Close() error {
	return repo.Db.Close()
}

func (repo *Repository) StartSession(user, game string) (*Session, error) {
	s := &Session{
		Id:      ulid.Make().String(),
		User:    user,
		Game:    game,
		Started: time.Now().UTC(),
	}
	err := repo.execWrap("INSERT INTO session(id, user, game, started) values(?, ?, ?, ?)",
		s.Id, s.User, s.Game, s.Started.UnixMilli())
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (repo *Repository) Record(session string, dir client.Direction, body []byte) error {
	return repo.execWrap("INSERT INTO frame(session, direction, body, at) values(?, ?, ?, ?)",
		session, string(dir), body, time.Now().UTC().UnixMilli())
}

// Recorder binds the repository to one session so it can be handed to a
// client session.
func (repo *Repository) Recorder(session string) client.Recorder {
	return &recorder{repo: repo, session: session}
}

// RecorderFactory starts a new journal session for every connection.
func (repo *Repository) RecorderFactory() client.RecorderFactory {
	return func(ep client.Endpoint) (client.Recorder, error) {
		s, err := repo.StartSession(ep.Username, ep.Game)
		if err != nil {
			return nil, err
		}
		return repo.Recorder(s.Id), nil
	}
}

type recorder struct {
	mu      sync.Mutex
	repo    *Repository
	session string
}

func (r *recorder) Record(dir client.Direction, frame []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.repo.Record(r.session, dir, frame)
}

// Sessions lists sessions newest first.
func (repo *Repository) Sessions() ([]*Session, error) {
	rows, err := repo.Db.Query(`
		SELECT s.id, s.user, s.game, s.started, COUNT(f.seq)
		FROM session s LEFT JOIN frame f ON f.session = s.id
		GROUP BY s.id
		ORDER BY s.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("error in db execution: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var s Session
		var started int64
		if err := rows.Scan(&s.Id, &s.User, &s.Game, &started, &s.Frames); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.Started = time.UnixMilli(started).UTC()
		sessions = append(sessions, &s)
	}
	return sessions, rows.Err()
}

func (repo *Repository) FindSession(id string) (*Session, error) {
	row := repo.Db.QueryRow("SELECT id, user, game, started FROM session WHERE id = ? LIMIT 1", id)
	var s Session
	var started int64
	if err := row.Scan(&s.Id, &s.User, &s.Game, &started); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNoSession, id)
		}
		return nil, fmt.Errorf("error in db execution: %w", err)
	}
	s.Started = time.UnixMilli(started).UTC()
	return &s, nil
}

// Frames returns the frames of a session in the order they were recorded.
// An empty direction returns both directions.
func (repo *Repository) Frames(session string, dir client.Direction) ([]Frame, error) {
	if _, err := repo.FindSession(session); err != nil {
		return nil, err
	}
	rows, err := repo.Db.Query(`
		SELECT seq, direction, body, at FROM frame
		WHERE session = ? AND (? = '' OR direction = ?)
		ORDER BY seq`, session, string(dir), string(dir))
	if err != nil {
		return nil, fmt.Errorf("error in db execution: %w", err)
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var f Frame
		var direction string
		var at int64
		if err := rows.Scan(&f.Seq, &direction, &f.Body, &at); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		f.Direction = client.Direction(direction)
		f.At = time.UnixMilli(at).UTC()
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

func (repo *Repository) execWrap(query string, args ...any) error {
	if _, err := repo.Db.Exec(query, args...); err != nil {
		return fmt.Errorf("error in db execution: %w", err)
	}
	return nil
}
