package importers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/google-importer/internal/database/contacts"
)

func serveConnections(env *testEnv, people ...map[string]any) {
	env.google.handle("GET /v1/people/me/connections", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pageSize") == "1" {
			writeJSON(w, map[string]any{"connections": people[:1], "totalPeople": len(people)})
			return
		}
		writeJSON(w, map[string]any{"connections": people, "totalPeople": len(people)})
	})
}

func person(resourceName, displayName string) map[string]any {
	p := map[string]any{"resourceName": resourceName}
	if displayName != "" {
		given, family, _ := strings.Cut(displayName, " ")
		p["names"] = []map[string]any{{"displayName": displayName, "givenName": given, "familyName": family}}
	}
	return p
}

func newContactsImporter(env *testEnv) (*ContactsImporter, *contacts.Repository) {
	repo := contacts.NewRepository(env.db.DB)
	return NewContactsImporter(env.deps.Client, repo, env.deps.Endpoints.People), repo
}

func TestContacts_ContactCount(t *testing.T) {
	env := newTestEnv(t)
	serveConnections(env, person("people/1", "Ada Lovelace"), person("people/2", "Alan Turing"))
	importer, _ := newContactsImporter(env)

	count, err := importer.ContactCount(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestContacts_ImportIntoNewBook(t *testing.T) {
	env := newTestEnv(t)
	ada := person("people/1", "Ada Lovelace")
	ada["emailAddresses"] = []map[string]any{{"value": "ada@example.com"}}
	ada["photos"] = []map[string]any{{"url": env.google.URL() + "/photos/ada.jpg"}}
	env.google.file("/photos/ada.jpg", "jpeg-bytes")

	serveConnections(env, ada, person("people/2", "Alan Turing"), person("people/3", ""))
	importer, repo := newContactsImporter(env)

	result, err := importer.ImportContacts(context.Background(), testUser, "", 0, "Google")
	require.NoError(t, err)
	assert.Equal(t, 2, result.NbAdded, "people without names are not imported")

	books, err := repo.ListAddressBooks(testUser)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Google", books[0].DisplayName)

	cards, err := repo.ListCards(books[0].ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	byName := map[string]string{}
	for _, c := range cards {
		byName[c.FullName] = c.Data
		assert.True(t, strings.HasSuffix(c.URI, ".vcf"))
	}
	assert.Contains(t, byName["Ada Lovelace"], "ada@example.com")
	assert.Contains(t, byName["Ada Lovelace"], "PHOTO")
	assert.Contains(t, byName["Alan Turing"], "UID:people/2")
	assert.Equal(t, 1, env.google.downloadCount("/photos/ada.jpg"))
}

func TestContacts_ReimportAddsNothing(t *testing.T) {
	env := newTestEnv(t)
	serveConnections(env, person("people/1", "Ada Lovelace"), person("people/2", "Alan Turing"))
	importer, repo := newContactsImporter(env)
	ctx := context.Background()

	book, err := repo.CreateAddressBook(testUser, "default", "Contacts")
	require.NoError(t, err)

	first, err := importer.ImportContacts(ctx, testUser, "default", 0, "")
	require.NoError(t, err)
	assert.Equal(t, 2, first.NbAdded)

	second, err := importer.ImportContacts(ctx, testUser, "", book.ID, "")
	require.NoError(t, err)
	assert.Zero(t, second.NbAdded)

	count, err := repo.CountCards(book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestContacts_OnlyNamelessPeople(t *testing.T) {
	env := newTestEnv(t)
	serveConnections(env, person("people/1", ""), person("people/2", ""))
	importer, repo := newContactsImporter(env)

	book, err := repo.CreateAddressBook(testUser, "default", "Contacts")
	require.NoError(t, err)

	result, err := importer.ImportContacts(context.Background(), testUser, "default", 0, "")
	require.NoError(t, err)
	assert.Zero(t, result.NbAdded)

	count, err := repo.CountCards(book.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestContacts_NoSuchAddressBook(t *testing.T) {
	env := newTestEnv(t)
	serveConnections(env, person("people/1", "Ada Lovelace"))
	importer, repo := newContactsImporter(env)
	ctx := context.Background()

	book, err := repo.CreateAddressBook(testUser, "default", "Contacts")
	require.NoError(t, err)

	tests := []struct {
		name string
		uri  string
		key  uint
	}{
		{"nothing given", "", 0},
		{"unknown uri", "missing", 0},
		{"unknown key", "", book.ID + 100},
		{"key and uri disagree", "other", book.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := importer.ImportContacts(ctx, testUser, tt.uri, tt.key, "")
			assert.ErrorIs(t, err, ErrNoSuchAddressBook)
		})
	}

	t.Run("book of another user", func(t *testing.T) {
		_, err := importer.ImportContacts(ctx, "bob", "", book.ID, "")
		assert.ErrorIs(t, err, ErrNoSuchAddressBook)
	})
}
