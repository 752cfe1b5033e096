// Package database opens the SQLite file behind the control journal and
// applies its schema migrations.
//
// The load registry is always rebuilt from configuration at startup; only
// the journal lives here.
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//	err = db.Migrate(ctx, migrations.FS)
//
// Migrations are YYYYMMDD_HHMMSS_description.up.sql files with an optional
// matching .down.sql, applied in version order and recorded in
// schema_migrations.
package database
