// Package bookcache implements the cache-aside layer in front of a book and
// review store. Two query shapes are cached:
//
//	books:all           - every book
//	reviews:book:<id>   - reviews of one book
//
// Reads check the cache, fall back to the store on miss and populate the entry
// with a fixed TTL. Writes go to the store first and then delete the affected
// key before returning, so the next read repopulates it.
//
// The cache is never required for correctness. Any cache failure (timeout,
// refused connection, corrupt bytes) degrades to a store read; only store
// errors and not-found outcomes reach the caller. If an invalidation cannot
// reach the cache, the stale entry lives at most until its TTL.
//
// The Catalog keeps no in-process state. Concurrent misses for one key may
// each query the store and each write the entry; the last write wins.
package bookcache
