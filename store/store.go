// Package store connects to the data store and manages tasks, the saved
// session snapshot, layer authorizations and the blocked-attempt history
package store

import (
	"errors"
	"io/fs"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	taskBucket    = "tasks"
	sessionBucket = "session"
	attemptBucket = "attempts"
	authBucket    = "authorizations"
)

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
	path string
}

// open creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		pathToDB,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrDatabaseOpen) ||
			errors.Is(err, bolt.ErrTimeout) {
			return nil, errFocusRunning
		}

		return nil, err
	}

	return db, nil
}

// Open reopens a previously closed connection.
func (c *Client) Open() error {
	db, err := openDB(c.path)
	if err != nil {
		return err
	}

	c.DB = db

	return nil
}

// NewClient returns a wrapper to a BoltDB connection.
func NewClient(dbPath string) (*Client, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	// Create the necessary buckets for storing data if they do not exist already
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{
			taskBucket,
			sessionBucket,
			attemptBucket,
			authBucket,
		} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Client{
		DB:   db,
		path: dbPath,
	}, nil
}
