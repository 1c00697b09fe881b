package importers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/emersion/go-vcard"
	"github.com/google/uuid"
	"google.golang.org/api/people/v1"

	"github.com/mrlokans/google-importer/internal/database"
	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/google"
	"github.com/mrlokans/google-importer/internal/transform"
)

const connectionsPageSize = 1000

// ContactSink stores address books and cards.
type ContactSink interface {
	GetAddressBookByURI(userID, uri string) (*entities.AddressBook, error)
	GetAddressBookByID(userID string, id uint) (*entities.AddressBook, error)
	CreateAddressBook(userID, uri, displayName string) (*entities.AddressBook, error)
	CardExistsWithName(addressBookID uint, fullName string) (bool, error)
	CreateCard(card *entities.Card) error
}

// ContactsImportResult is returned by ImportContacts.
type ContactsImportResult struct {
	NbAdded int `json:"nbAdded"`
}

// ContactsImporter copies the user's Google contacts into an address book
// in a single pass.
type ContactsImporter struct {
	client    APIClient
	sink      ContactSink
	peopleURL string
}

func NewContactsImporter(client APIClient, sink ContactSink, peopleURL string) *ContactsImporter {
	return &ContactsImporter{client: client, sink: sink, peopleURL: peopleURL}
}

func (c *ContactsImporter) connections(userID, fields string, pageSize int) *google.Paginator[*people.Person] {
	return google.NewPaginator[*people.Person](c.client, userID, google.Request{
		BaseURL:  c.peopleURL,
		Endpoint: "/v1/people/me/connections",
		Params:   map[string]any{"personFields": fields},
	}, "connections", pageSize)
}

// ContactCount returns the number of contacts reported by the first page.
func (c *ContactsImporter) ContactCount(ctx context.Context, userID string) (int64, error) {
	var resp people.ListConnectionsResponse
	err := c.client.Do(ctx, userID, google.Request{
		BaseURL:  c.peopleURL,
		Endpoint: "/v1/people/me/connections",
		Params:   map[string]any{"personFields": "names", "pageSize": 1},
	}, &resp)
	if err != nil {
		return 0, err
	}
	if resp.TotalPeople > 0 {
		return resp.TotalPeople, nil
	}
	return resp.TotalItems, nil
}

// ImportContacts imports into the address book identified by uri or key,
// or into a new book named newName when neither is given.
//
// Contacts are deduplicated by display name within the book. Two people
// sharing a name collapse into one card, and a renamed contact is imported
// again.
func (c *ContactsImporter) ImportContacts(ctx context.Context, userID, addressBookURI string, addressBookKey uint, newName string) (*ContactsImportResult, error) {
	book, err := c.resolveAddressBook(userID, addressBookURI, addressBookKey, newName)
	if err != nil {
		return nil, err
	}

	fetch := func(ctx context.Context, url string) ([]byte, error) {
		var buf bytes.Buffer
		if _, err := c.client.Download(ctx, userID, url, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	result := &ContactsImportResult{}
	pager := c.connections(userID, transform.PersonFields, connectionsPageSize)
	for person := range pager.Items(ctx) {
		card, ok := transform.PersonToCard(ctx, person, fetch)
		if !ok {
			continue
		}
		if c.writeCard(book, card) {
			result.NbAdded++
		}
	}
	if err := pager.Err(); err != nil {
		return nil, err
	}

	log.Printf("Contacts import: added %d contacts to %q for user %s", result.NbAdded, book.DisplayName, userID)
	return result, nil
}

func (c *ContactsImporter) resolveAddressBook(userID, uri string, key uint, newName string) (*entities.AddressBook, error) {
	var (
		book *entities.AddressBook
		err  error
	)
	switch {
	case key > 0:
		book, err = c.sink.GetAddressBookByID(userID, key)
		if book != nil && uri != "" && book.URI != uri {
			book = nil
		}
	case uri != "":
		book, err = c.sink.GetAddressBookByURI(userID, uri)
	case newName != "":
		book, err = c.sink.CreateAddressBook(userID, uuid.NewString(), newName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve address book: %w", err)
	}
	if book == nil {
		return nil, ErrNoSuchAddressBook
	}
	return book, nil
}

func (c *ContactsImporter) writeCard(book *entities.AddressBook, card vcard.Card) bool {
	fullName := card.PreferredValue(vcard.FieldFormattedName)

	exists, err := c.sink.CardExistsWithName(book.ID, fullName)
	if err != nil {
		log.Printf("Contacts import: failed to check %q: %v", fullName, err)
		return false
	}
	if exists {
		return false
	}

	data, err := transform.EncodeCard(card)
	if err != nil {
		log.Printf("Contacts import: skipping %q: %v", fullName, err)
		return false
	}

	err = c.sink.CreateCard(&entities.Card{
		AddressBookID: book.ID,
		URI:           uuid.NewString() + ".vcf",
		UID:           card.Value(vcard.FieldUID),
		FullName:      fullName,
		Data:          data,
	})
	if errors.Is(err, database.ErrDuplicateObject) {
		return false
	}
	if err != nil {
		log.Printf("Contacts import: failed to write %q: %v", fullName, err)
		return false
	}
	return true
}
