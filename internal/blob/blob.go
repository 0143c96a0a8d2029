// Package blob holds the external blob storage boundary used for trip
// photos. Trips store only the resulting public URLs, never raw bytes.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Ref is one pending upload: a name hint plus the local content.
type Ref struct {
	Name string
	Body io.Reader
}

// Store is the blob storage contract. UploadMany is fail-fast: the first
// failure aborts the whole batch and is returned, so a trip is never
// committed with a partial photo set.
type Store interface {
	Upload(ctx context.Context, userID, name string, body io.Reader) (string, error)
	UploadMany(ctx context.Context, userID string, refs []Ref) ([]string, error)
	Delete(ctx context.Context, remoteURL string) error
}

// HTTPStore talks to an HTTP object store: PUT uploads an object and the
// object URL doubles as its public download URL; DELETE removes it.
type HTTPStore struct {
	baseURL string
	folder  string
	client  *http.Client
}

// NewHTTPStore constructs an HTTPStore rooted at baseURL. Objects are placed
// under the "trip_photos" folder, namespaced per user in the object name.
func NewHTTPStore(baseURL string, client *http.Client) *HTTPStore {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		folder:  "trip_photos",
		client:  client,
	}
}

var _ Store = (*HTTPStore)(nil)

// Upload stores one object and returns its public URL. The object name is
// made unique with the user ID, the current time, and a random suffix so
// concurrent uploads never collide.
func (s *HTTPStore) Upload(ctx context.Context, userID, name string, body io.Reader) (string, error) {
	object := fmt.Sprintf("%s_%d_%s%s", userID, time.Now().UnixMilli(), uuid.NewString()[:8], extension(name))
	target := s.baseURL + "/" + s.folder + "/" + url.PathEscape(object)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, body)
	if err != nil {
		return "", fmt.Errorf("blob.HTTPStore.Upload: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("blob.HTTPStore.Upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("blob.HTTPStore.Upload: unexpected status %d", resp.StatusCode)
	}
	return target, nil
}

// UploadMany uploads the refs in order and returns their URLs. The first
// failure aborts and is returned as-is; already uploaded objects are left in
// place for the caller to clean up or retry.
func (s *HTTPStore) UploadMany(ctx context.Context, userID string, refs []Ref) ([]string, error) {
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		u, err := s.Upload(ctx, userID, ref.Name, ref.Body)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// Delete removes the object at the given URL.
func (s *HTTPStore) Delete(ctx context.Context, remoteURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, remoteURL, nil)
	if err != nil {
		return fmt.Errorf("blob.HTTPStore.Delete: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("blob.HTTPStore.Delete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("blob.HTTPStore.Delete: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// extension returns the file extension of the name hint, defaulting to .jpg
// (photos are the only content uploaded today).
func extension(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 && i < len(name)-1 {
		return name[i:]
	}
	return ".jpg"
}
