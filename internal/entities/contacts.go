package entities

import "time"

// AddressBook is a local contact collection owned by a user.
type AddressBook struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"size:64;uniqueIndex:idx_addressbook_uri" json:"user_id"`
	URI         string    `gorm:"size:255;uniqueIndex:idx_addressbook_uri" json:"uri"`
	DisplayName string    `gorm:"size:255" json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (AddressBook) TableName() string {
	return "address_books"
}

// Card is a stored vCard. FullName mirrors the FN property for lookups.
type Card struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AddressBookID uint      `gorm:"not null;uniqueIndex:idx_card_uri;index:idx_card_name" json:"address_book_id"`
	URI           string    `gorm:"size:255;not null;uniqueIndex:idx_card_uri" json:"uri"`
	UID           string    `gorm:"size:255" json:"uid"`
	FullName      string    `gorm:"size:255;index:idx_card_name" json:"full_name"`
	Data          string    `gorm:"type:text" json:"-"`
	ETag          string    `gorm:"size:64" json:"etag"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Card) TableName() string {
	return "cards"
}
