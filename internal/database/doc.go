// Package database provides the data access layer for the importer.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, shared errors
//	├── settings/        # Per-user and per-app key/value settings
//	├── contacts/        # Address books and vCards (contact sink)
//	├── calendars/       # Calendars and iCalendar objects (calendar sink)
//	└── notifications/   # User notifications emitted by imports
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./importer.db")
//
//	contactsRepo := contacts.NewRepository(db.DB)
//	calendarsRepo := calendars.NewRepository(db.DB)
//
// Sink writes that collide on a unique key return ErrDuplicateObject so
// importers can log and skip the item.
package database
