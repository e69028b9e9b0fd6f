// Package identity manages the durable pseudonymous device id and the derived
// fingerprint used by the anti-cheat checks. The fingerprint is an opaque,
// stable string; it is never treated as an identity.
package identity

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/algiers-transit/arrivals-backend-go/internal/models"
	"github.com/algiers-transit/arrivals-backend-go/internal/store"
)

// Signals are the raw inputs the fingerprint is derived from. Stability
// matters more than uniqueness: the same installation must keep producing the
// same fingerprint across restarts.
type Signals struct {
	Hostname     string
	OS           string
	Architecture string
	NumCPU       int
	Timezone     string
}

// CollectSignals gathers fingerprint inputs from the local environment
func CollectSignals() Signals {
	host, _ := os.Hostname()
	zone, _ := time.Now().Zone()
	return Signals{
		Hostname:     host,
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		NumCPU:       runtime.NumCPU(),
		Timezone:     zone,
	}
}

// Fingerprint hashes the signals into an opaque stable string
func Fingerprint(s Signals) string {
	h := fnv.New64a()
	h.Write([]byte(strings.Join([]string{
		s.Hostname,
		s.OS,
		s.Architecture,
		strconv.Itoa(s.NumCPU),
		s.Timezone,
	}, "|")))
	return strconv.FormatUint(h.Sum64(), 36)
}

// Manager owns the durable device identity for this installation
type Manager struct {
	store       *store.DurableStore
	deviceID    string
	fingerprint string
}

// NewManager loads the device id from the store chain, generating and
// persisting a fresh one on first run
func NewManager(ctx context.Context, st *store.DurableStore, signals Signals) *Manager {
	m := &Manager{store: st, fingerprint: Fingerprint(signals)}

	if id, ok := st.Get(ctx, store.KeyDeviceID); ok && id != "" {
		m.deviceID = id
		log.Printf("identity: device id loaded: %s", models.MaskDeviceID(id))
		return m
	}

	m.deviceID = fmt.Sprintf("dev_%s", uuid.NewString())
	if err := st.Set(ctx, store.KeyDeviceID, m.deviceID); err != nil {
		log.Printf("identity: failed to persist device id: %v", err)
	}
	log.Printf("identity: generated new device id: %s", models.MaskDeviceID(m.deviceID))
	return m
}

// DeviceID returns the durable pseudonymous id
func (m *Manager) DeviceID() string { return m.deviceID }

// DeviceFingerprint returns the derived signal hash
func (m *Manager) DeviceFingerprint() string { return m.fingerprint }
