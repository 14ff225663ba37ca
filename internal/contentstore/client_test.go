package contentstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_UploadFile(t *testing.T) {
	var gotAuth, gotName string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		gotName = header.Filename
		gotBody, _ = io.ReadAll(file)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"IpfsHash":"QmPhoto","PinSize":5}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "https://gw.example/ipfs/", "secret-jwt", 5*time.Second)
	out, err := c.UploadFile(context.Background(), FileUpload{Name: "photo.jpg", Data: []byte("hello")})

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-jwt", gotAuth)
	assert.Equal(t, "photo.jpg", gotName)
	assert.Equal(t, "hello", string(gotBody))
	assert.Equal(t, UploadedFile{OriginalName: "photo.jpg", Hash: "QmPhoto", Size: 5, Type: "image/jpeg"}, out)
	assert.Equal(t, "https://gw.example/ipfs/QmPhoto", c.GatewayURL(out.Hash))
}

func TestClient_UploadFileFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`, wantErr: ErrUploadFailed},
		{name: "empty hash", status: http.StatusOK, body: `{"IpfsHash":""}`, wantErr: ErrEmptyHash},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"bad jwt"}`, wantErr: ErrUploadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "", "", time.Second)
			_, err := c.UploadFile(context.Background(), FileUpload{Name: "a.pdf", Data: []byte("x")})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_UploadFileRejectsEmptyData(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", "", time.Second)
	_, err := c.UploadFile(context.Background(), FileUpload{Name: "empty.pdf"})
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestClient_UploadJSON(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinJSONToIPFS", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"IpfsHash":"QmManifest"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "", time.Second)
	hash, err := c.UploadJSON(context.Background(), map[string]string{"k": "v"}, "manifest.json")

	require.NoError(t, err)
	assert.Equal(t, "QmManifest", hash)
	assert.Equal(t, map[string]any{"k": "v"}, payload["pinataContent"])
	assert.Equal(t, map[string]any{"name": "manifest.json"}, payload["pinataMetadata"])
}
