package importers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"time"

	"google.golang.org/api/drive/v3"

	"github.com/mrlokans/google-importer/internal/config"
	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/google"
	"github.com/mrlokans/google-importer/internal/settingsstore"
	"github.com/mrlokans/google-importer/internal/storage"
	"github.com/mrlokans/google-importer/internal/transform"
)

const (
	drivePageSize = 1000

	folderQuery = "mimeType='" + transform.FolderMimeType + "' and trashed=false"
	fileQuery   = "mimeType!='" + transform.FolderMimeType + "' and trashed=false"
	ownedFilter = " and 'me' in owners"

	folderFields = "nextPageToken,files(id,name,parents)"
	fileFields   = "nextPageToken,files(id,name,mimeType,size,parents)"
)

// DriveInfo is the result of sizing a user's Drive.
type DriveInfo struct {
	UsageInDrive int64 `json:"usageInDrive"`
	FileCount    int64 `json:"nbFiles"`
}

// DriveImporter imports Drive in batches, recreating the folder tree before
// placing files into it.
type DriveImporter struct {
	*batchEngine
}

func NewDriveImporter(deps Deps) *DriveImporter {
	d := &DriveImporter{}
	d.batchEngine = &batchEngine{
		Deps:         deps,
		domain:       entities.ImportDomainDrive,
		label:        "Drive",
		notification: entities.NotificationImportDriveFinished,
		folder:       func(prefs settingsstore.ImportPreferences) string { return prefs.DriveFolder },
		run:          d.importBatch,
		now:          time.Now,
	}
	return d
}

func (d *DriveImporter) listFiles(userID, query, fields string) *google.Paginator[*drive.File] {
	return google.NewPaginator[*drive.File](d.Client, userID, google.Request{
		Endpoint: "/drive/v3/files",
		Params: map[string]any{
			"q":      query,
			"fields": fields,
		},
	}, "files", drivePageSize)
}

func fileQueryFor(prefs settingsstore.ImportPreferences) string {
	if prefs.ConsiderSharedFiles {
		return fileQuery
	}
	return fileQuery + ownedFilter
}

// DriveSize returns the Drive quota usage and the number of files an import
// would enumerate.
func (d *DriveImporter) DriveSize(ctx context.Context, userID string) (*DriveInfo, error) {
	var about drive.About
	err := d.Client.Do(ctx, userID, google.Request{
		Endpoint: "/drive/v3/about",
		Params:   map[string]any{"fields": "storageQuota"},
	}, &about)
	if err != nil {
		return nil, err
	}

	count, err := d.fileCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	info := &DriveInfo{FileCount: count}
	if about.StorageQuota != nil {
		info.UsageInDrive = about.StorageQuota.UsageInDrive
	}
	return info, nil
}

func (d *DriveImporter) fileCount(ctx context.Context, userID string) (int64, error) {
	prefs := d.Settings.GetImportPreferences(userID)
	pager := d.listFiles(userID, fileQueryFor(prefs), "nextPageToken,files(id)")

	var count int64
	for range pager.Items(ctx) {
		count++
	}
	return count, pager.Err()
}

// buildIndex lists every folder into a fresh DirectoryIndex.
func (d *DriveImporter) buildIndex(ctx context.Context, userID string) (*DirectoryIndex, error) {
	index := NewDirectoryIndex()
	pager := d.listFiles(userID, folderQuery, folderFields)
	for folder := range pager.Items(ctx) {
		parent := ""
		if len(folder.Parents) > 0 {
			parent = folder.Parents[0]
		}
		index.Add(folder.Id, folder.Name, parent)
	}
	if err := pager.Err(); err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return index, nil
}

func (d *DriveImporter) importBatch(ctx context.Context, userID string, sink storage.FileSink, root string, b budget) (bool, error) {
	total, err := d.fileCount(ctx, userID)
	if err != nil {
		return false, err
	}

	index, err := d.buildIndex(ctx, userID)
	if err != nil {
		return false, err
	}
	if err := index.Materialize(ctx, sink, root); err != nil {
		return false, err
	}

	prefs := d.Settings.GetImportPreferences(userID)
	pager := d.listFiles(userID, fileQueryFor(prefs), fileFields)

	var enumerated int64
	for file := range pager.Items(ctx) {
		if err := d.importFile(ctx, userID, sink, root, index, file, prefs.DocumentFormat, b); err != nil {
			if errors.Is(err, errBudgetReached) {
				return enumerated >= total, nil
			}
			return false, err
		}
		enumerated++
	}
	if err := pager.Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (d *DriveImporter) importFile(
	ctx context.Context,
	userID string,
	sink storage.FileSink,
	root string,
	index *DirectoryIndex,
	file *drive.File,
	format config.DocumentFormat,
	b budget,
) error {
	name, ok := transform.DriveFileName(file.Name, file.MimeType, format)
	if !ok {
		b.progress.Skip()
		return nil
	}

	dir := root
	if len(file.Parents) > 0 {
		if p, ok := index.Path(file.Parents[0]); ok {
			dir = p
		}
	}

	_, err := downloadItem(ctx, d.Client, sink, userID, d.contentURL(file, format), path.Join(dir, name), b)
	return err
}

// contentURL points at the raw bytes of a binary file or at the export
// endpoint of a Google-native document.
func (d *DriveImporter) contentURL(file *drive.File, format config.DocumentFormat) string {
	base := d.Endpoints.API + "/drive/v3/files/" + url.PathEscape(file.Id)
	if transform.IsGoogleNative(file.MimeType) {
		f, _ := transform.ExportFormatFor(file.MimeType, format)
		return base + "/export?mimeType=" + url.QueryEscape(f.MimeType)
	}
	return base + "?alt=media"
}
