// Package importers copies a user's Google data into local storage.
//
// # Architecture
//
// Every importer follows the same flow:
//
//	Google API → google.Paginator → transform → Sink (files, cards, calendar objects)
//
// Contacts and Calendar are imported in a single pass from an HTTP request.
// Photos and Drive can be far larger, so they run as a series of background
// batches driven by the task queue:
//
//	StartImport → session active → RunBatch → RunBatch → ... → session cleared
//
// Each batch re-lists the remote items from the first page and skips every
// item whose file already exists at its destination, so a batch can be
// repeated or resumed after a crash without duplicating files. A batch
// stops once it has downloaded more than its byte budget and schedules its
// continuation. The import completes when a sweep has enumerated as many
// items as the counting call reported; a notification is then sent.
//
// # Sessions
//
// The durable state of a batched import is an entities.ImportSession stored
// in the settings store. The active flag is the only guard against
// concurrent batches for the same user and domain: it is re-read at the
// start and at the end of every batch, so Cancel takes effect at the next
// batch boundary.
//
// # Errors
//
// Per-item failures (an event that cannot be converted, a duplicate card, a
// single failed download) are logged and skipped. Failures to list, to
// authenticate or to create a destination folder abort the import and
// clear its session.
package importers
