package importers

import (
	"context"
	"errors"
	"net/http"
	"path"
	"time"

	"github.com/mrlokans/google-importer/internal/entities"
	"github.com/mrlokans/google-importer/internal/google"
	"github.com/mrlokans/google-importer/internal/settingsstore"
	"github.com/mrlokans/google-importer/internal/storage"
	"github.com/mrlokans/google-importer/internal/transform"
)

const (
	albumPageSize     = 50
	mediaItemPageSize = 100
)

// PhotoCount is the result of counting a user's library.
type PhotoCount struct {
	Albums       int   `json:"nbAlbums"`
	SharedAlbums int   `json:"nbSharedAlbums"`
	Photos       int64 `json:"nbPhotos"`
}

// PhotosImporter imports the Photos library in batches: one folder per
// album, then the items that belong to no album into the import root.
type PhotosImporter struct {
	*batchEngine
}

func NewPhotosImporter(deps Deps) *PhotosImporter {
	p := &PhotosImporter{}
	p.batchEngine = &batchEngine{
		Deps:         deps,
		domain:       entities.ImportDomainPhotos,
		label:        "Photos",
		notification: entities.NotificationImportPhotosFinished,
		folder:       func(prefs settingsstore.ImportPreferences) string { return prefs.PhotosFolder },
		run:          p.importBatch,
		now:          time.Now,
	}
	return p
}

// photoSweep walks albums then the library, visiting each item id once.
type photoSweep struct {
	p      *PhotosImporter
	userID string
	seen   map[string]struct{}
}

func (p *PhotosImporter) newSweep(userID string) *photoSweep {
	return &photoSweep{p: p, userID: userID, seen: make(map[string]struct{})}
}

// albums lists owned albums, then shared ones when requested.
func (s *photoSweep) albums(ctx context.Context, shared bool) (owned, sharedAlbums []google.Album, err error) {
	owned, err = s.listAlbums(ctx, "/v1/albums", "albums")
	if err != nil {
		return nil, nil, err
	}
	if shared {
		sharedAlbums, err = s.listAlbums(ctx, "/v1/sharedAlbums", "sharedAlbums")
		if err != nil {
			return nil, nil, err
		}
	}
	return owned, sharedAlbums, nil
}

func (s *photoSweep) listAlbums(ctx context.Context, endpoint, key string) ([]google.Album, error) {
	pager := google.NewPaginator[google.Album](s.p.Client, s.userID, google.Request{
		BaseURL:  s.p.Endpoints.Photos,
		Endpoint: endpoint,
	}, key, albumPageSize)

	var albums []google.Album
	for album := range pager.Items(ctx) {
		albums = append(albums, album)
	}
	return albums, pager.Err()
}

// items visits the unseen items of an album, or of the whole library when
// albumID is empty. visit returning an error stops the walk.
func (s *photoSweep) items(ctx context.Context, albumID string, visit func(item google.MediaItem) error) error {
	req := google.Request{BaseURL: s.p.Endpoints.Photos, Endpoint: "/v1/mediaItems"}
	if albumID != "" {
		req.Method = http.MethodPost
		req.Endpoint = "/v1/mediaItems:search"
		req.Params = map[string]any{"albumId": albumID}
	}

	pager := google.NewPaginator[google.MediaItem](s.p.Client, s.userID, req, "mediaItems", mediaItemPageSize)
	for item := range pager.Items(ctx) {
		if _, ok := s.seen[item.Id]; ok {
			continue
		}
		s.seen[item.Id] = struct{}{}
		if err := visit(item); err != nil {
			return err
		}
	}
	return pager.Err()
}

// CountPhotos counts albums and the distinct items across albums and the
// library.
func (p *PhotosImporter) CountPhotos(ctx context.Context, userID string) (*PhotoCount, error) {
	prefs := p.Settings.GetImportPreferences(userID)
	sweep := p.newSweep(userID)

	owned, shared, err := sweep.albums(ctx, prefs.ConsiderSharedAlbums)
	if err != nil {
		return nil, err
	}

	count := &PhotoCount{Albums: len(owned), SharedAlbums: len(shared)}
	visit := func(google.MediaItem) error {
		count.Photos++
		return nil
	}
	for _, album := range concatAlbums(owned, shared) {
		if err := sweep.items(ctx, album.Id, visit); err != nil {
			return nil, err
		}
	}
	if err := sweep.items(ctx, "", visit); err != nil {
		return nil, err
	}
	return count, nil
}

func (p *PhotosImporter) importBatch(ctx context.Context, userID string, sink storage.FileSink, root string, b budget) (bool, error) {
	count, err := p.CountPhotos(ctx, userID)
	if err != nil {
		return false, err
	}

	prefs := p.Settings.GetImportPreferences(userID)
	sweep := p.newSweep(userID)
	owned, shared, err := sweep.albums(ctx, prefs.ConsiderSharedAlbums)
	if err != nil {
		return false, err
	}

	var enumerated int64
	visitInto := func(folder string) func(item google.MediaItem) error {
		return func(item google.MediaItem) error {
			target := path.Join(folder, transform.SanitizeFileName(item.Filename))
			if _, err := downloadItem(ctx, p.Client, sink, userID, item.DownloadURL(), target, b); err != nil {
				return err
			}
			enumerated++
			return nil
		}
	}

	err = func() error {
		for _, album := range concatAlbums(owned, shared) {
			folder := path.Join(root, transform.SanitizeName(album.Title))
			if err := createFolder(ctx, sink, folder); err != nil {
				return err
			}
			if err := sweep.items(ctx, album.Id, visitInto(folder)); err != nil {
				return err
			}
		}
		return sweep.items(ctx, "", visitInto(root))
	}()

	switch {
	case errors.Is(err, errBudgetReached):
		return enumerated >= count.Photos, nil
	case err != nil:
		return false, err
	default:
		return true, nil
	}
}

func concatAlbums(owned, shared []google.Album) []google.Album {
	all := make([]google.Album, 0, len(owned)+len(shared))
	all = append(all, owned...)
	return append(all, shared...)
}
