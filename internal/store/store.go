package store

import (
	"context"
	"log"
	"sync"
)

// Well-known keys in the durable store
const (
	KeyDeviceID     = "deviceId"
	KeyUserTrust    = "userTrust"
	KeyCrowdReports = "crowdReports"
	KeyGPSTracking  = "gpsTrackingData"
)

// KeyValueStore is one storage backend. Get returns found=false both for
// missing keys and for backends that are currently unavailable.
type KeyValueStore interface {
	Name() string
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// DurableStore reads from an ordered list of backends and replicates every
// write to all of them. The first tier that returns a value wins; tiers that
// error are skipped so a broken backend degrades to "missing" rather than
// failing the caller.
type DurableStore struct {
	tiers []KeyValueStore
	mu    sync.Mutex
}

// NewDurableStore creates a store over the given tiers, highest priority first
func NewDurableStore(tiers ...KeyValueStore) *DurableStore {
	return &DurableStore{tiers: tiers}
}

// Get returns the value for key from the highest-priority tier that has it.
// On a hit the value is replicated back into the faster tiers above it.
func (d *DurableStore) Get(ctx context.Context, key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, t := range d.tiers {
		v, found, err := t.Get(ctx, key)
		if err != nil {
			log.Printf("store: %s get %q failed: %v", t.Name(), key, err)
			continue
		}
		if !found {
			continue
		}
		// Heal tiers that missed the key
		for j := 0; j < i; j++ {
			if err := d.tiers[j].Set(ctx, key, v); err != nil {
				log.Printf("store: %s backfill %q failed: %v", d.tiers[j].Name(), key, err)
			}
		}
		return v, true
	}
	return "", false
}

// Set replicates the value to every tier. A tier failing is logged and does
// not fail the write as long as at least one tier succeeds.
func (d *DurableStore) Set(ctx context.Context, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var firstErr error
	ok := false
	for _, t := range d.tiers {
		if err := t.Set(ctx, key, value); err != nil {
			log.Printf("store: %s set %q failed: %v", t.Name(), key, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		ok = true
	}
	if ok {
		return nil
	}
	return firstErr
}
