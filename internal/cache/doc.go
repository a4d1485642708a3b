// Package cache provides a bucketed key/value cache with usage counters.
//
// Each bucket is either local (durable across sessions) or session
// (cleared when the planning session ends). Every read hit increments the
// record's use count; the auto-mapper uses the counts to prefer mappings a
// user has chosen before. Records never expire.
//
// Buckets persist through a Store. SQLiteStore keeps local buckets on disk,
// RedisStore keeps session buckets in a namespace that is dropped at session
// end, and MemoryStore serves tests and single-process runs.
package cache
