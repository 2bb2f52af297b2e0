package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yeti47/reelpress/logging"
)

func newTestClient(serverURL string) RemoteStore {
	return NewDriveStoreClient(logging.NopLogger, serverURL, serverURL, "test-token", 5*time.Second)
}

func TestDriveStoreClient_List(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query().Get("q")
		if !strings.Contains(q, "'folder-1' in parents") || !strings.Contains(q, "trashed=false") {
			t.Errorf("unexpected query %q", q)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("unexpected auth header %q", auth)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"files": []map[string]string{
				{"id": "a1", "name": "first.mp4", "mimeType": "video/mp4"},
				{"id": "b2", "name": "second.mov", "mimeType": "video/quicktime"},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	candidates, err := client.List(context.Background(), "folder-1")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].ID != "a1" || candidates[0].Title != "first.mp4" || candidates[0].MimeType != "video/mp4" {
		t.Errorf("unexpected first candidate: %+v", candidates[0])
	}
}

func TestDriveStoreClient_List_NoFolder(t *testing.T) {
	client := newTestClient("http://unused")

	if _, err := client.List(context.Background(), ""); err == nil {
		t.Fatal("expected an error for an unconfigured folder id")
	}
}

func TestDriveStoreClient_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/obj-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("alt") != "media" {
			t.Errorf("expected alt=media, got %q", r.URL.Query().Get("alt"))
		}
		w.Write([]byte("video-bytes"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	destPath := filepath.Join(t.TempDir(), "input.mp4")
	if err := client.Download(context.Background(), "obj-1", destPath); err != nil {
		t.Fatalf("Download() error: %v", err)
	}

	data, err := os.ReadFile(destPath)
	if err != nil {
		t.Fatalf("failed to read downloaded file: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Errorf("unexpected file content %q", data)
	}
}

func TestDriveStoreClient_Upload(t *testing.T) {
	var uploadSeen, permissionSeen bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST" && r.URL.Path == "/files":
			uploadSeen = true
			if got := r.URL.Query().Get("uploadType"); got != "multipart" {
				t.Errorf("expected uploadType=multipart, got %q", got)
			}
			if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/related") {
				t.Errorf("expected multipart/related content type, got %q", ct)
			}
			body, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(body), "reel.mp4") {
				t.Error("upload body missing file name metadata")
			}
			if !strings.Contains(string(body), "dest-folder") {
				t.Error("upload body missing parent folder metadata")
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "new-object"})

		case r.Method == "POST" && r.URL.Path == "/files/new-object/permissions":
			permissionSeen = true
			var permission map[string]string
			json.NewDecoder(r.Body).Decode(&permission)
			if permission["role"] != "reader" || permission["type"] != "anyone" {
				t.Errorf("unexpected permission grant: %v", permission)
			}
			w.WriteHeader(http.StatusOK)

		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	localPath := filepath.Join(t.TempDir(), "reel.mp4")
	if err := os.WriteFile(localPath, []byte("processed-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	url, err := client.Upload(context.Background(), localPath, "dest-folder")
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}

	want := fmt.Sprintf(publicURLFormat, "new-object")
	if url != want {
		t.Errorf("expected public URL %q, got %q", want, url)
	}
	if !uploadSeen || !permissionSeen {
		t.Errorf("expected upload and permission calls, got upload=%v permission=%v", uploadSeen, permissionSeen)
	}
}

func TestDriveStoreClient_Upload_NoFolder(t *testing.T) {
	client := newTestClient("http://unused")

	localPath := filepath.Join(t.TempDir(), "reel.mp4")
	os.WriteFile(localPath, []byte("x"), 0644)

	if _, err := client.Upload(context.Background(), localPath, ""); err == nil {
		t.Fatal("expected an error for an unconfigured destination folder")
	}
}

func TestDriveStoreClient_Upload_MissingFile(t *testing.T) {
	client := newTestClient("http://unused")

	if _, err := client.Upload(context.Background(), "/nonexistent/reel.mp4", "dest"); err == nil {
		t.Fatal("expected an error for a missing local file")
	}
}

func TestDriveStoreClient_Upload_PermissionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/files" {
			json.NewEncoder(w).Encode(map[string]string{"id": "new-object"})
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	localPath := filepath.Join(t.TempDir(), "reel.mp4")
	os.WriteFile(localPath, []byte("x"), 0644)

	if _, err := client.Upload(context.Background(), localPath, "dest"); err == nil {
		t.Fatal("a failed permission grant must fail the upload")
	}
}

func TestDriveStoreClient_Delete(t *testing.T) {
	var deleted string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "DELETE" {
			t.Errorf("unexpected method %s", r.Method)
		}
		deleted = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	if err := client.Delete(context.Background(), "obj-9"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if deleted != "/files/obj-9" {
		t.Errorf("unexpected delete path %q", deleted)
	}
}
