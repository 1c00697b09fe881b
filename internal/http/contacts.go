package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/google-importer/internal/importers"
)

// ContactsService is implemented by importers.ContactsImporter.
type ContactsService interface {
	ContactCount(ctx context.Context, userID string) (int64, error)
	ImportContacts(ctx context.Context, userID, addressBookURI string, addressBookKey uint, newName string) (*importers.ContactsImportResult, error)
}

type ContactsController struct {
	contacts ContactsService
}

func NewContactsController(contacts ContactsService) *ContactsController {
	return &ContactsController{contacts: contacts}
}

// GetContactNumber handles GET /api/google/contacts/count
func (cc *ContactsController) GetContactNumber(c *gin.Context) {
	count, err := cc.contacts.ContactCount(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondGoogleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nbContacts": count})
}

// ImportContactsRequest is the body of POST /api/google/contacts/import.
// One of AddressBookURI, AddressBookKey or NewName selects the target.
type ImportContactsRequest struct {
	AddressBookURI string `json:"uri" form:"uri"`
	AddressBookKey uint   `json:"key" form:"key"`
	NewName        string `json:"newName" form:"newName"`
}

// ImportContacts handles POST /api/google/contacts/import
func (cc *ContactsController) ImportContacts(c *gin.Context) {
	var req ImportContactsRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	result, err := cc.contacts.ImportContacts(c.Request.Context(), GetUserID(c), req.AddressBookURI, req.AddressBookKey, req.NewName)
	if errors.Is(err, importers.ErrNoSuchAddressBook) {
		respondError(c, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		respondGoogleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
