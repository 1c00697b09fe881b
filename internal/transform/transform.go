// Package transform maps Google API records onto the local formats the
// importers write: vCard text for contacts, iCalendar text for events and
// file names plus export formats for Drive items.
package transform

import "errors"

// ErrUnsupportedItem marks a record that cannot be represented locally.
// Importers skip such records without treating them as failures.
var ErrUnsupportedItem = errors.New("unsupported item")
