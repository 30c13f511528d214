// Package redis provides connection helpers for the Redis instance backing
// the cross-process tenant cache.
package redis
