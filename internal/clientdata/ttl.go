package clientdata

import "time"

// TTL constants for cached data.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// TTLRoadmap is the default lifetime of a computed roadmap.
	TTLRoadmap = 12 * time.Hour
)
