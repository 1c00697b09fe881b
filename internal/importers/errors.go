package importers

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrlokans/google-importer/internal/google"
)

// ErrNoSuchAddressBook is returned when the target address book of a
// contacts import does not exist and no name was given to create one.
var ErrNoSuchAddressBook = errors.New("no such address book")

// errBudgetReached unwinds a sweep once the batch byte budget is spent.
var errBudgetReached = errors.New("batch budget reached")

// FolderCreationConflictError is returned when a destination folder cannot
// be created because a file already occupies its path.
type FolderCreationConflictError struct {
	Path string
	Err  error
}

func (e *FolderCreationConflictError) Error() string {
	return fmt.Sprintf("cannot create folder %s: %v", e.Path, e.Err)
}

func (e *FolderCreationConflictError) Unwrap() error {
	return e.Err
}

// isFatal reports whether a per-item error must abort the whole import
// rather than skip the item. Only a dead batch context or an unusable
// credential qualify; every other failure is specific to the item.
func isFatal(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return true
	}
	return google.NeedsReauthorization(err)
}
