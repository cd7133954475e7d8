// Package redis provides a Redis-backed progress store for deployments that
// run several API instances against shared counters.
package redis
