package google

import "strings"

// The Photos Library API has no client in google.golang.org/api, so its
// payloads are declared here.

// Album is a Photos Library album, owned or shared.
type Album struct {
	Id              string `json:"id"`
	Title           string `json:"title"`
	MediaItemsCount int64  `json:"mediaItemsCount,string,omitempty"`
}

// MediaItem is a photo or video in the user's library.
type MediaItem struct {
	Id       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	BaseUrl  string `json:"baseUrl"`
}

// DownloadURL returns the URL serving the original bytes of the item.
func (m *MediaItem) DownloadURL() string {
	if strings.HasPrefix(m.MimeType, "video/") {
		return m.BaseUrl + "=dv"
	}
	return m.BaseUrl + "=d"
}
