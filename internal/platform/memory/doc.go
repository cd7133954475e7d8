// Package memory provides in-process implementations of the store interfaces.
// They are the default backends for a single-instance deployment and the
// reference behaviour the Postgres and Redis stores are tested against.
package memory
