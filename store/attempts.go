package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/focusguard/internal/models"
)

// DefaultAttemptLimit is the number of blocked attempts kept when no limit is
// configured.
const DefaultAttemptLimit = 500

// appendAttempt records an attempt and evicts the oldest entries so that at
// most limit remain. Keys are insertion sequence numbers so the bucket is
// always in chronological order.
func (c *Client) appendAttempt(a models.BlockedAttempt, limit int) error {
	value, err := json.Marshal(a)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(attemptBucket))

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)

		if err := b.Put(key, value); err != nil {
			return err
		}

		cur := b.Cursor()

		var count int

		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			count++
		}

		excess := count - limit

		for k, _ := cur.First(); k != nil && excess > 0; k, _ = cur.First() {
			if err := b.Delete(k); err != nil {
				return err
			}

			excess--
		}

		return nil
	})
}

// Attempts returns the recorded attempts made at or after since, oldest first.
func (c *Client) Attempts(since time.Time) ([]models.BlockedAttempt, error) {
	var attempts []models.BlockedAttempt

	err := c.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(attemptBucket)).ForEach(func(_, v []byte) error {
			var a models.BlockedAttempt

			if err := json.Unmarshal(v, &a); err != nil {
				return err
			}

			if a.Time.Before(since) {
				return nil
			}

			attempts = append(attempts, a)

			return nil
		})
	})

	return attempts, err
}

// ClearAttempts removes the whole attempt history.
func (c *Client) ClearAttempts() error {
	return c.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(attemptBucket)); err != nil {
			return err
		}

		_, err := tx.CreateBucket([]byte(attemptBucket))

		return err
	})
}

// AttemptHistory is a bounded, persistent log of blocked attempts.
type AttemptHistory struct {
	client *Client
	limit  int
}

// AttemptHistory returns a history that keeps the most recent limit entries.
func (c *Client) AttemptHistory(limit int) *AttemptHistory {
	if limit <= 0 {
		limit = DefaultAttemptLimit
	}

	return &AttemptHistory{
		client: c,
		limit:  limit,
	}
}

// Record appends an attempt, evicting the oldest entries on overflow.
func (h *AttemptHistory) Record(_ context.Context, a models.BlockedAttempt) error {
	return h.client.appendAttempt(a, h.limit)
}

// Entries returns every attempt in the history, oldest first.
func (h *AttemptHistory) Entries(_ context.Context) ([]models.BlockedAttempt, error) {
	return h.client.Attempts(time.Time{})
}

// Clear empties the history.
func (h *AttemptHistory) Clear(_ context.Context) error {
	return h.client.ClearAttempts()
}
