// Package database provides SQLite connectivity for the registry's sqlite
// storage facility.
//
// This package manages:
//   - Database connection with WAL mode so reads proceed during a save
//   - Schema migrations applied from an fs.FS (normally embedded)
//   - Transaction helper used to bracket a save pass
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Storage.SQLite.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS()); err != nil {
//	    return err
//	}
//
// Migration Strategy:
//
// Migrations are additive-only to support safe rollbacks:
//   - New columns must be NULLABLE or have DEFAULT values
//   - Each migration file has both .up.sql and .down.sql
package database
