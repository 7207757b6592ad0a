// File: utils/constants.go
package utils

import "time"

// ReferenceCachePrefix is the prefix used for Redis reference-data cache keys.
const ReferenceCachePrefix = "ref:"

// ReferenceCacheTTL is the default time-to-live for reference cache entries.
const ReferenceCacheTTL = 5 * time.Minute
