// Package testdb provides utilities for database-backed tests.
//
// Tests that need PostgreSQL call GetTestDBWithT, which skips the test when
// neither DATABASE_URL nor SCRY_TEST_DB_URL is set, applies the embedded
// migrations once per process, and closes the connection on cleanup. WithTx
// runs a test body inside a transaction that is always rolled back.
package testdb
