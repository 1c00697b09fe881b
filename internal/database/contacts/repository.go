// Package contacts stores address books and vCards.
package contacts

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/google-importer/internal/database"
	"github.com/mrlokans/google-importer/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetAddressBookByURI returns the user's address book with uri, or nil when none exists.
func (r *Repository) GetAddressBookByURI(userID, uri string) (*entities.AddressBook, error) {
	var book entities.AddressBook
	err := r.db.Where("user_id = ? AND uri = ?", userID, uri).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAddressBookByID returns the user's address book with id, or nil when none exists.
func (r *Repository) GetAddressBookByID(userID string, id uint) (*entities.AddressBook, error) {
	var book entities.AddressBook
	err := r.db.Where("user_id = ? AND id = ?", userID, id).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *Repository) CreateAddressBook(userID, uri, displayName string) (*entities.AddressBook, error) {
	book := &entities.AddressBook{
		UserID:      userID,
		URI:         uri,
		DisplayName: displayName,
	}
	if err := r.db.Create(book).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("address book %q: %w", uri, database.ErrDuplicateObject)
		}
		return nil, err
	}
	return book, nil
}

// ListAddressBooks returns the user's address books ordered by name.
func (r *Repository) ListAddressBooks(userID string) ([]entities.AddressBook, error) {
	var books []entities.AddressBook
	err := r.db.Where("user_id = ?", userID).Order("display_name ASC").Find(&books).Error
	return books, err
}

// CardExistsWithName reports whether the book holds a card whose FN equals
// fullName. The comparison is case-sensitive.
func (r *Repository) CardExistsWithName(addressBookID uint, fullName string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Card{}).
		Where("address_book_id = ? AND full_name = ?", addressBookID, fullName).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) CreateCard(card *entities.Card) error {
	if err := r.db.Create(card).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("card %q: %w", card.URI, database.ErrDuplicateObject)
		}
		return err
	}
	return nil
}

func (r *Repository) CountCards(addressBookID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Card{}).Where("address_book_id = ?", addressBookID).Count(&count).Error
	return count, err
}

func (r *Repository) ListCards(addressBookID uint) ([]entities.Card, error) {
	var cards []entities.Card
	err := r.db.Where("address_book_id = ?", addressBookID).Order("id ASC").Find(&cards).Error
	return cards, err
}
