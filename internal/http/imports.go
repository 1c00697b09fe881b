package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/google-importer/internal/importers"
)

// BatchImporter is the session surface shared by the Photos and Drive
// importers.
type BatchImporter interface {
	StartImport(ctx context.Context, userID string) (*importers.StartResult, error)
	Info(userID string) (*importers.ImportInfo, error)
	Cancel(userID string) error
}

// PhotosService is implemented by importers.PhotosImporter.
type PhotosService interface {
	BatchImporter
	CountPhotos(ctx context.Context, userID string) (*importers.PhotoCount, error)
}

// DriveService is implemented by importers.DriveImporter.
type DriveService interface {
	BatchImporter
	DriveSize(ctx context.Context, userID string) (*importers.DriveInfo, error)
}

// batchController serves start, info and cancel for one batched import.
type batchController struct {
	importer BatchImporter
	label    string
}

// StartImport begins an import and returns its target folder. Starting an
// import that is already running returns the running import's folder.
func (b *batchController) StartImport(c *gin.Context) {
	result, err := b.importer.StartImport(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondGoogleError(c, err)
		return
	}
	respondAccepted(c, result)
}

func (b *batchController) GetImportInformation(c *gin.Context) {
	info, err := b.importer.Info(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, b.label+" import info")
		return
	}
	c.JSON(http.StatusOK, info)
}

func (b *batchController) CancelImport(c *gin.Context) {
	if err := b.importer.Cancel(GetUserID(c)); err != nil {
		respondInternalError(c, err, b.label+" import cancel")
		return
	}
	respondSuccess(c, b.label+" import cancelled")
}

type PhotosController struct {
	batchController
	photos PhotosService
}

func NewPhotosController(photos PhotosService) *PhotosController {
	return &PhotosController{
		batchController: batchController{importer: photos, label: "photos"},
		photos:          photos,
	}
}

// GetPhotoNumber handles GET /api/google/photos/count
func (pc *PhotosController) GetPhotoNumber(c *gin.Context) {
	count, err := pc.photos.CountPhotos(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondGoogleError(c, err)
		return
	}
	c.JSON(http.StatusOK, count)
}

type DriveController struct {
	batchController
	drive DriveService
}

func NewDriveController(drive DriveService) *DriveController {
	return &DriveController{
		batchController: batchController{importer: drive, label: "drive"},
		drive:           drive,
	}
}

// GetDriveSize handles GET /api/google/drive/size
func (dc *DriveController) GetDriveSize(c *gin.Context) {
	info, err := dc.drive.DriveSize(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondGoogleError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
