package store

import (
	"strconv"

	bolt "go.etcd.io/bbolt"
)

// SetAuthorized records whether the user granted a blocking layer permission
// to enforce itself.
func (c *Client) SetAuthorized(layer string, granted bool) error {
	return c.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(authBucket)).
			Put([]byte(layer), []byte(strconv.FormatBool(granted)))
	})
}

// Authorized reports whether a layer was granted. Layers the user was never
// asked about are not authorized.
func (c *Client) Authorized(layer string) (bool, error) {
	var granted bool

	err := c.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(authBucket)).Get([]byte(layer))
		if v == nil {
			return nil
		}

		var err error

		granted, err = strconv.ParseBool(string(v))

		return err
	})

	return granted, err
}
