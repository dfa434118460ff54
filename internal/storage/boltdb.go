package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/cuemby/notesd/internal/note"
	bolt "go.etcd.io/bbolt"
)

const schemaVersion = 1

var (
	bucketNotes    = []byte("notes")
	bucketByTag    = []byte("notes_by_tag")
	bucketByTime   = []byte("notes_by_time")
	bucketSettings = []byte("settings")

	keySchemaVersion  = []byte("schema_version")
	keyLastAssignedMs = []byte("last_assigned_ms")
)

// BoltStore implements Store on top of an embedded bbolt database,
// ground in the teacher's pkg/storage/boltdb.go bucket-per-collection
// layout, generalized from the cluster's object kinds to a single
// note collection with a secondary (tag, created_at) index.
type BoltStore struct {
	db *bolt.DB
}

// wireNote is the JSON-on-disk representation of a note.Note.
type wireNote struct {
	ID          []byte
	Tag         uint32
	Header      []byte
	Details     []byte
	CreatedAtMs int64
}

// NewBoltStore opens (creating if absent) a bbolt database at
// <dataDir>/notesd.db and ensures the schema buckets exist.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "notesd.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketNotes, bucketByTag, bucketByTime, bucketSettings} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}

		settings := tx.Bucket(bucketSettings)
		if settings.Get(keySchemaVersion) == nil {
			var v [4]byte
			binary.BigEndian.PutUint32(v[:], schemaVersion)
			if err := settings.Put(keySchemaVersion, v[:]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func tagKey(tag uint32, createdAtMs int64, id note.ID) []byte {
	key := make([]byte, 4+8+32)
	binary.BigEndian.PutUint32(key[0:4], tag)
	binary.BigEndian.PutUint64(key[4:12], uint64(createdAtMs))
	copy(key[12:], id[:])
	return key
}

func timeKey(createdAtMs int64, id note.ID) []byte {
	key := make([]byte, 8+32)
	binary.BigEndian.PutUint64(key[0:8], uint64(createdAtMs))
	copy(key[8:], id[:])
	return key
}

// Insert implements Store.
func (s *BoltStore) Insert(_ context.Context, n *note.Note) (bool, error) {
	inserted := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		notes := tx.Bucket(bucketNotes)
		if notes.Get(n.ID[:]) != nil {
			return nil // AlreadyPresent, inserted stays false
		}

		data, err := json.Marshal(toWire(n))
		if err != nil {
			return fmt.Errorf("marshal note: %w", err)
		}
		if err := notes.Put(n.ID[:], data); err != nil {
			return err
		}

		if err := tx.Bucket(bucketByTag).Put(tagKey(n.Tag, n.CreatedAtMs, n.ID), n.ID[:]); err != nil {
			return err
		}
		var tagBuf [4]byte
		binary.BigEndian.PutUint32(tagBuf[:], n.Tag)
		if err := tx.Bucket(bucketByTime).Put(timeKey(n.CreatedAtMs, n.ID), tagBuf[:]); err != nil {
			return err
		}

		if err := bumpLastAssigned(tx, n.CreatedAtMs); err != nil {
			return err
		}

		inserted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("insert note: %w", err)
	}
	return inserted, nil
}

func bumpLastAssigned(tx *bolt.Tx, createdAtMs int64) error {
	settings := tx.Bucket(bucketSettings)
	cur := int64(0)
	if v := settings.Get(keyLastAssignedMs); v != nil {
		cur = int64(binary.BigEndian.Uint64(v))
	}
	if createdAtMs > cur {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(createdAtMs))
		return settings.Put(keyLastAssignedMs, buf[:])
	}
	return nil
}

// LastAssignedMs implements Store.
func (s *BoltStore) LastAssignedMs(_ context.Context) (int64, error) {
	var ms int64
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketSettings).Get(keyLastAssignedMs); v != nil {
			ms = int64(binary.BigEndian.Uint64(v))
		}
		return nil
	})
	return ms, err
}

// QueryByTag implements Store.
func (s *BoltStore) QueryByTag(_ context.Context, tag uint32, since note.Cursor, limit int) ([]*note.Note, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit %d must be positive", note.ErrInvalidArgument, limit)
	}

	var results []*note.Note
	err := s.db.View(func(tx *bolt.Tx) error {
		byTag := tx.Bucket(bucketByTag)
		notes := tx.Bucket(bucketNotes)
		c := byTag.Cursor()

		start := tagKey(tag, since.CreatedAtMs, since.ID)
		var tagPrefix [4]byte
		binary.BigEndian.PutUint32(tagPrefix[:], tag)

		for k, idVal := c.Seek(start); k != nil; k, idVal = c.Next() {
			if len(k) < 4 || string(k[0:4]) != string(tagPrefix[:]) {
				break // past this tag's range
			}
			if string(k) == string(start) {
				continue // exclusive cursor: skip the boundary itself
			}
			data := notes.Get(idVal)
			if data == nil {
				continue // defensive: index referenced a deleted note
			}
			var w wireNote
			if err := json.Unmarshal(data, &w); err != nil {
				return fmt.Errorf("unmarshal note: %w", err)
			}
			results = append(results, fromWire(&w))
			if len(results) == limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteOlderThan implements Store.
func (s *BoltStore) DeleteOlderThan(_ context.Context, cutoffMs int64) (int, error) {
	deleted := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		byTime := tx.Bucket(bucketByTime)
		byTag := tx.Bucket(bucketByTag)
		notes := tx.Bucket(bucketNotes)
		c := byTime.Cursor()

		var toDelete [][]byte
		for k, tagVal := c.First(); k != nil; k, tagVal = c.Next() {
			if len(k) < 8 {
				continue
			}
			createdAtMs := int64(binary.BigEndian.Uint64(k[0:8]))
			if createdAtMs > cutoffMs {
				break // keys ordered ascending by created_at
			}
			var id note.ID
			copy(id[:], k[8:])
			tag := binary.BigEndian.Uint32(tagVal)

			toDelete = append(toDelete, k)
			if err := byTag.Delete(tagKey(tag, createdAtMs, id)); err != nil {
				return err
			}
			if err := notes.Delete(id[:]); err != nil {
				return err
			}
			deleted++
		}
		for _, k := range toDelete {
			if err := byTime.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete older than: %w", err)
	}
	return deleted, nil
}

// CountByTag implements Store.
func (s *BoltStore) CountByTag(_ context.Context, tag uint32) (int64, error) {
	var count int64
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketByTag).Cursor()
		var prefix [4]byte
		binary.BigEndian.PutUint32(prefix[:], tag)
		for k, _ := c.Seek(prefix[:]); k != nil && len(k) >= 4 && string(k[0:4]) == string(prefix[:]); k, _ = c.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// CountTotal implements Store.
func (s *BoltStore) CountTotal(_ context.Context) (int64, error) {
	var count int64
	err := s.db.View(func(tx *bolt.Tx) error {
		count = int64(tx.Bucket(bucketNotes).Stats().KeyN)
		return nil
	})
	return count, err
}

func toWire(n *note.Note) *wireNote {
	return &wireNote{
		ID:          append([]byte(nil), n.ID[:]...),
		Tag:         n.Tag,
		Header:      n.Header,
		Details:     n.Details,
		CreatedAtMs: n.CreatedAtMs,
	}
}

func fromWire(w *wireNote) *note.Note {
	n := &note.Note{
		Tag:         w.Tag,
		Header:      w.Header,
		Details:     w.Details,
		CreatedAtMs: w.CreatedAtMs,
	}
	copy(n.ID[:], w.ID)
	return n
}
