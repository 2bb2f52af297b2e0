package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/yeti47/reelpress/logging"
	"github.com/yeti47/reelpress/media"
)

// publicURLFormat is the deterministic download URL for an uploaded object.
// The publish endpoint fetches the video from this URL, which is why every
// uploaded object gets a public-read permission grant.
const publicURLFormat = "https://drive.google.com/uc?export=download&id=%s"

// RemoteStore handles folder-scoped listing and CRUD over blob objects in
// the remote store.
type RemoteStore interface {
	// List enumerates the non-trashed children of a folder.
	List(ctx context.Context, folderID string) ([]media.Candidate, error)

	// Download streams an object's bytes to a local file.
	Download(ctx context.Context, objectID, destPath string) error

	// Upload creates an object under the folder, pushes the file's bytes,
	// grants public-read permission and returns the public download URL.
	Upload(ctx context.Context, localPath, folderID string) (string, error)

	// Delete removes an object from the store.
	Delete(ctx context.Context, objectID string) error
}

// driveStoreClient implements RemoteStore against a Drive-style REST API.
type driveStoreClient struct {
	baseURL     string
	uploadURL   string
	accessToken string
	httpClient  *http.Client
	logger      logging.Logger
}

// NewDriveStoreClient creates a new remote store client. baseURL serves the
// metadata operations, uploadURL the media upload endpoint.
func NewDriveStoreClient(logger logging.Logger, baseURL, uploadURL, accessToken string, timeout time.Duration) RemoteStore {
	if logger == nil {
		logger = logging.NopLogger
	}

	return &driveStoreClient{
		baseURL:     baseURL,
		uploadURL:   uploadURL,
		accessToken: accessToken,
		logger:      logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// objectInfo is the store's representation of one object.
type objectInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// listResponse is the store's response to a folder listing.
type listResponse struct {
	Files []objectInfo `json:"files"`
}

// List enumerates the non-trashed children of a folder.
func (s *driveStoreClient) List(ctx context.Context, folderID string) ([]media.Candidate, error) {
	if folderID == "" {
		return nil, fmt.Errorf("no folder id configured for listing")
	}

	query := url.Values{}
	query.Set("q", fmt.Sprintf("'%s' in parents and trashed=false", folderID))
	query.Set("fields", "files(id,name,mimeType)")

	reqURL := fmt.Sprintf("%s/files?%s", s.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	s.authorize(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list folder: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("store returned status %d listing folder: %s", resp.StatusCode, string(body))
	}

	var listed listResponse
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}

	candidates := make([]media.Candidate, 0, len(listed.Files))
	for _, f := range listed.Files {
		candidates = append(candidates, media.Candidate{
			ID:       f.ID,
			Title:    f.Name,
			MimeType: f.MimeType,
		})
	}

	return candidates, nil
}

// Download streams an object's bytes to a local file.
func (s *driveStoreClient) Download(ctx context.Context, objectID, destPath string) error {
	reqURL := fmt.Sprintf("%s/files/%s?alt=media", s.baseURL, url.PathEscape(objectID))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	s.authorize(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download object %s: %w", objectID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("store returned status %d downloading %s: %s", resp.StatusCode, objectID, string(body))
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create local file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write downloaded bytes: %w", err)
	}

	return nil
}

// Upload creates an object under the folder, pushes the file's bytes, grants
// public-read permission and returns the public download URL.
func (s *driveStoreClient) Upload(ctx context.Context, localPath, folderID string) (string, error) {
	if folderID == "" {
		return "", fmt.Errorf("no destination folder id configured for upload")
	}

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open local file for upload: %w", err)
	}
	defer file.Close()

	// Multipart upload: a JSON metadata part followed by the media bytes.
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return "", fmt.Errorf("failed to create metadata part: %w", err)
	}

	metadata := map[string]any{
		"name":    filepath.Base(localPath),
		"parents": []string{folderID},
	}
	if err := json.NewEncoder(metaPart).Encode(metadata); err != nil {
		return "", fmt.Errorf("failed to encode upload metadata: %w", err)
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", "video/mp4")
	mediaPart, err := writer.CreatePart(mediaHeader)
	if err != nil {
		return "", fmt.Errorf("failed to create media part: %w", err)
	}
	if _, err := io.Copy(mediaPart, file); err != nil {
		return "", fmt.Errorf("failed to write media bytes: %w", err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	reqURL := fmt.Sprintf("%s/files?uploadType=multipart", s.uploadURL)

	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	s.authorize(req)
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", localPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("store returned status %d uploading %s: %s", resp.StatusCode, localPath, string(body))
	}

	var created objectInfo
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("upload response contained no object id")
	}

	if err := s.grantPublicRead(ctx, created.ID); err != nil {
		return "", err
	}

	publicURL := fmt.Sprintf(publicURLFormat, created.ID)
	s.logger.Info("Uploaded object to remote store", "object", created.ID, "url", publicURL)

	return publicURL, nil
}

// grantPublicRead makes an object readable by anyone with the link. The
// publish endpoint requires a publicly fetchable source URL.
func (s *driveStoreClient) grantPublicRead(ctx context.Context, objectID string) error {
	reqURL := fmt.Sprintf("%s/files/%s/permissions", s.baseURL, url.PathEscape(objectID))

	permission := map[string]string{
		"role": "reader",
		"type": "anyone",
	}
	body, err := json.Marshal(permission)
	if err != nil {
		return fmt.Errorf("failed to marshal permission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	s.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to grant public read on %s: %w", objectID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("store returned status %d granting permission on %s: %s",
			resp.StatusCode, objectID, string(respBody))
	}

	return nil
}

// Delete removes an object from the store.
func (s *driveStoreClient) Delete(ctx context.Context, objectID string) error {
	reqURL := fmt.Sprintf("%s/files/%s", s.baseURL, url.PathEscape(objectID))

	req, err := http.NewRequestWithContext(ctx, "DELETE", reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	s.authorize(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("store returned status %d deleting %s: %s", resp.StatusCode, objectID, string(body))
	}

	return nil
}

// authorize attaches the bearer token to a request.
func (s *driveStoreClient) authorize(req *http.Request) {
	if s.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.accessToken)
	}
}
