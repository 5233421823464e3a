package model

import "time"

// Entitlement is the stored PRO state. It is only authoritative together with
// the current time: an active flag with a past expiry means expired.
type Entitlement struct {
	Active    bool       `json:"is_pro"`
	ExpiresAt *time.Time `json:"pro_expiry"`
}
