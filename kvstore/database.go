// Copyright 2021 The Erigon Authors
// (original work)
// Copyright 2026 The Shardchain Authors
// (modifications)
// This file is part of Shardchain.
//
// Shardchain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Shardchain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Shardchain. If not, see <http://www.gnu.org/licenses/>.

// Package kvstore is the opaque, generic key-value store every chain and
// node uses to persist blocks: one bbolt file holding one bucket per
// Database[T] instance, locked for the life of the process so two local
// test nodes never collide on the same file.
package kvstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/erigontech/shardchain/shardcodec"
	"github.com/erigontech/shardchain/shardhash"
)

var bucketName = []byte("blocks")

// Database is a namespaced, H256-keyed store of values of type T, backed by
// a single bbolt bucket. T is round-tripped through shardcodec, so it must
// be a plain data type shardcodec.Marshal/Unmarshal can handle.
type Database[T any] struct {
	db   *bolt.DB
	lock *flock.Flock
	path string
}

// Namespace derives the on-disk path for a node's database, per SPEC_FULL
// §4.6: namespaced by (shard_id, node_id, creation_timestamp) so concurrent
// local test nodes never share a file.
func Namespace(baseDir string, shardID, nodeID int, created time.Time) string {
	name := fmt.Sprintf("node(shard-%d,index-%d)-%d.db", shardID, nodeID, created.UnixNano())
	return filepath.Join(baseDir, name)
}

// Open creates or opens the bbolt file at path, locking it for the life of
// the process via a sibling .lock file.
func Open[T any](path string) (*Database[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating database directory")
	}

	fl := flock.New(path + ".lock")
	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, "locking database file")
	}
	if !locked {
		return nil, errors.Errorf("database %s is already in use by another process", path)
	}

	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		_ = fl.Unlock()
		return nil, errors.Wrap(err, "opening bbolt database")
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		_ = fl.Unlock()
		return nil, errors.Wrap(err, "creating bucket")
	}

	return &Database[T]{db: db, lock: fl, path: path}, nil
}

// Close releases the bbolt file and its lock.
func (d *Database[T]) Close() error {
	closeErr := d.db.Close()
	unlockErr := d.lock.Unlock()
	if closeErr != nil {
		return closeErr
	}
	return unlockErr
}

// Insert stores value under key, overwriting any previous value.
func (d *Database[T]) Insert(key shardhash.H256, value T) error {
	buf, err := shardcodec.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "encoding value")
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(key.Bytes(), buf)
	})
}

// Get returns the value stored under key, if present.
func (d *Database[T]) Get(key shardhash.H256) (T, bool) {
	var out T
	var found bool
	_ = d.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketName).Get(key.Bytes())
		if raw == nil {
			return nil
		}
		buf := make([]byte, len(raw))
		copy(buf, raw)
		if err := shardcodec.Unmarshal(buf, &out); err != nil {
			return err
		}
		found = true
		return nil
	})
	return out, found
}

// Remove deletes key, if present.
func (d *Database[T]) Remove(key shardhash.H256) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete(key.Bytes())
	})
}

// ContainsKey reports whether key is present.
func (d *Database[T]) ContainsKey(key shardhash.H256) bool {
	var found bool
	_ = d.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketName).Get(key.Bytes()) != nil
		return nil
	})
	return found
}

// Len returns the number of entries currently stored.
func (d *Database[T]) Len() int {
	var n int
	_ = d.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketName).Stats().KeyN
		return nil
	})
	return n
}

// Entry is one key/value pair returned by Iter.
type Entry[T any] struct {
	Key   shardhash.H256
	Value T
}

// Iter returns every entry currently stored, in bbolt's key order.
func (d *Database[T]) Iter() ([]Entry[T], error) {
	var out []Entry[T]
	err := d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).ForEach(func(k, v []byte) error {
			var val T
			buf := make([]byte, len(v))
			copy(buf, v)
			if err := shardcodec.Unmarshal(buf, &val); err != nil {
				return err
			}
			out = append(out, Entry[T]{Key: shardhash.FromBytes(k), Value: val})
			return nil
		})
	})
	return out, err
}
