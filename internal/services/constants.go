package services

import "time"

// Cache hash patterns
const (
	IDENTITY_RESOLVE_CACHE_PATTERN = "identity:resolve:%s"
	IDENTITY_BRIDGE_CACHE_PATTERN  = "identity:bridge:%s"
)

const IdentityCacheTTL = 24 * time.Hour
