//go:build integration

// Package testdb provides helpers for database integration tests.
//
// Tests run inside a transaction that is rolled back when the test function
// returns, so they can run in parallel against one database without cleanup:
//
//	func TestBookingStore(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        bookings := postgres.NewPostgresBookingStore(tx, nil)
//	        // ...
//	    })
//	}
//
// The database is taken from FITDASH_TEST_DATABASE_URL. Tests are skipped
// when it is unset. Migrations are applied once per test binary.
package testdb
