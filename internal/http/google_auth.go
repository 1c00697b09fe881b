package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/oauth2"
)

// WebFlow is implemented by oauth2.FlowHandler.
type WebFlow interface {
	StartWebFlow(redirectURL string) (*oauth2.AuthRequest, error)
	CompleteWebFlow(ctx context.Context, userID, code, codeVerifier, redirectURL, expectedState, receivedState string) (*oauth2.FlowResult, error)
}

// Connection is implemented by oauth2.StoredCredentials.
type Connection interface {
	IsConnected(userID string) (bool, error)
	Disconnect(userID string) error
}

// UserValueStore keeps the pending authorization between redirect and
// callback. Implemented by settingsstore.SettingsStore.
type UserValueStore interface {
	GetUserValue(userID, key, def string) string
	SetUserValue(userID, key, value string) error
	DeleteUserValue(userID, key string) error
}

// GoogleAuthController runs the browser authorization of a Google account.
type GoogleAuthController struct {
	flow        WebFlow
	connection  Connection
	values      UserValueStore
	redirectURL string
}

func NewGoogleAuthController(flow WebFlow, connection Connection, values UserValueStore, redirectURL string) *GoogleAuthController {
	return &GoogleAuthController{
		flow:        flow,
		connection:  connection,
		values:      values,
		redirectURL: redirectURL,
	}
}

// AuthURL handles GET /api/google/oauth/url
// The state and PKCE verifier are kept per user until the callback.
func (ac *GoogleAuthController) AuthURL(c *gin.Context) {
	req, err := ac.flow.StartWebFlow(ac.redirectURL)
	if err != nil {
		respondInternalError(c, err, "build auth url")
		return
	}

	if err := ac.values.SetUserValue(GetUserID(c), entities.SettingKeyOAuthState, req.State+" "+req.CodeVerifier); err != nil {
		respondInternalError(c, err, "save oauth state")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": req.URL})
}

// Callback handles GET /api/google/oauth/callback
func (ac *GoogleAuthController) Callback(c *gin.Context) {
	userID := GetUserID(c)

	if errParam := c.Query("error"); errParam != "" {
		respondBadRequest(c, "authorization error: "+errParam)
		return
	}
	code := c.Query("code")
	if code == "" {
		respondBadRequest(c, "no authorization code received")
		return
	}

	pending := ac.values.GetUserValue(userID, entities.SettingKeyOAuthState, "")
	expectedState, verifier, _ := strings.Cut(pending, " ")

	result, err := ac.flow.CompleteWebFlow(c.Request.Context(), userID, code, verifier, ac.redirectURL, expectedState, c.Query("state"))
	if errors.Is(err, oauth2.ErrStateMismatch) {
		respondBadRequest(c, err.Error())
		return
	}
	// The pending authorization is single use.
	_ = ac.values.DeleteUserValue(userID, entities.SettingKeyOAuthState)
	if err != nil {
		respondGoogleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"connected":     true,
		"remoteAccount": result.RemoteAccount,
	})
}

// Status handles GET /api/google/status
func (ac *GoogleAuthController) Status(c *gin.Context) {
	connected, err := ac.connection.IsConnected(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "google status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": connected})
}

// Disconnect handles POST /api/google/disconnect
func (ac *GoogleAuthController) Disconnect(c *gin.Context) {
	if err := ac.connection.Disconnect(GetUserID(c)); err != nil {
		respondInternalError(c, err, "google disconnect")
		return
	}
	respondSuccess(c, "google account disconnected")
}
