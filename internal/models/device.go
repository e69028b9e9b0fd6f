package models

// Trust score bounds. Every adjustment is clamped into this range.
const (
	TrustMin     = 0.1
	TrustMax     = 2.0
	TrustDefault = 1.0
)

// ClampTrust forces a trust score into [TrustMin, TrustMax]
func ClampTrust(t float64) float64 {
	if t < TrustMin {
		return TrustMin
	}
	if t > TrustMax {
		return TrustMax
	}
	return t
}

// DeviceIdentity identifies one installation. DeviceID is the unit of trust
// accounting; Fingerprint is a correlation signal for anti-cheat only.
type DeviceIdentity struct {
	DeviceID    string  `json:"deviceId"`
	Fingerprint string  `json:"fingerprint"`
	TrustScore  float64 `json:"trustScore"`
}

// MaskDeviceID shortens a device id for display/logging
func MaskDeviceID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12] + "..."
}
