// Package database opens the SQL connection behind the sqlite and mysql
// document store drivers.
//
// Connect wraps GORM, builds the DSN for the configured driver and pings the
// server before returning. The inspector helpers read table columns so the
// test command can report a half-migrated schema.
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//
//	missing, err := database.MissingColumns(db, "cosmos_documents", []string{"doc_id", "body"})
package database
