package store

import (
	"cmp"
	"encoding/json"
	"slices"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/focusguard/internal/models"
)

// SaveTask creates a task or overwrites an existing one with the same id.
func (c *Client) SaveTask(task *models.Task) error {
	value, err := json.Marshal(task)
	if err != nil {
		return err
	}

	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(taskBucket)).Put([]byte(task.ID), value)
	})
}

// GetTask returns the task with the given id.
func (c *Client) GetTask(id string) (*models.Task, error) {
	var task models.Task

	err := c.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(taskBucket)).Get([]byte(id))
		if b == nil {
			return errTaskNotFound.Fmt(id)
		}

		return json.Unmarshal(b, &task)
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// Tasks returns all tasks, oldest first.
func (c *Client) Tasks() ([]*models.Task, error) {
	var tasks []*models.Task

	err := c.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(taskBucket)).ForEach(func(_, v []byte) error {
			var task models.Task

			if err := json.Unmarshal(v, &task); err != nil {
				return err
			}

			tasks = append(tasks, &task)

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(tasks, func(a, b *models.Task) int {
		return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
	})

	return tasks, nil
}

// DeleteTask removes a task together with a snapshot that belongs to it.
func (c *Client) DeleteTask(id string) error {
	return c.Update(func(tx *bolt.Tx) error {
		tasks := tx.Bucket([]byte(taskBucket))

		if tasks.Get([]byte(id)) == nil {
			return errTaskNotFound.Fmt(id)
		}

		if err := tasks.Delete([]byte(id)); err != nil {
			return err
		}

		sess := tx.Bucket([]byte(sessionBucket))
		if string(sess.Get([]byte(keyTaskID))) == id {
			return clearSnapshot(sess)
		}

		return nil
	})
}
