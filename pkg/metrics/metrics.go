// Package metrics keeps lightweight operational counters and gauges in a
// bbolt file under the application workdir, surviving restarts without an
// external metrics backend.
package metrics

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketGauges   = []byte("gauges")
	bucketCounters = []byte("counters")

	db *bolt.DB
)

var ErrNotInitialized = errors.New("metrics: not initialized")

// InitMetrics opens the metrics store under <workdir>/data/metrics.db.
func InitMetrics(workdir string) error {
	dir := filepath.Join(workdir, "data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	d, err := bolt.Open(filepath.Join(dir, "metrics.db"), 0o600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return err
	}
	err = d.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketGauges); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketCounters)
		return err
	})
	if err != nil {
		_ = d.Close()
		return err
	}
	db = d
	return nil
}

func put(bucket []byte, name string, value int64) error {
	if db == nil {
		return ErrNotInitialized
	}
	return db.Update(func(tx *bolt.Tx) error {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(value))
		return tx.Bucket(bucket).Put([]byte(name), buf[:])
	})
}

func get(bucket []byte, name string) int64 {
	if db == nil {
		return 0
	}
	var v int64
	_ = db.View(func(tx *bolt.Tx) error {
		if raw := tx.Bucket(bucket).Get([]byte(name)); len(raw) == 8 {
			v = int64(binary.BigEndian.Uint64(raw))
		}
		return nil
	})
	return v
}

// SetGauge stores the current value of a gauge.
func SetGauge(name string, value int64) {
	_ = put(bucketGauges, name, value)
}

// GetGauge returns the last stored gauge value, zero when absent.
func GetGauge(name string) int64 {
	return get(bucketGauges, name)
}

// IncrCounter adds delta to a monotonic counter.
func IncrCounter(name string, delta int64) {
	if db == nil {
		return
	}
	_ = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCounters)
		var cur int64
		if raw := b.Get([]byte(name)); len(raw) == 8 {
			cur = int64(binary.BigEndian.Uint64(raw))
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(cur+delta))
		return b.Put([]byte(name), buf[:])
	})
}

// GetCounter returns the accumulated counter value, zero when absent.
func GetCounter(name string) int64 {
	return get(bucketCounters, name)
}

// Close releases the metrics store.
func Close() error {
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}
