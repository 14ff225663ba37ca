package contentstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	ErrEmptyFile     = errors.New("file is empty")
	ErrEmptyHash     = errors.New("content store returned an empty hash")
	ErrUploadFailed  = errors.New("content store upload failed")
	ErrNotConfigured = errors.New("content store is not configured")
)

// FileUpload is one file received from the vendor form.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadedFile is the manifest entry for a pinned file.
type UploadedFile struct {
	OriginalName string `json:"originalName"`
	Hash         string `json:"hash"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
}

// Client talks to a Pinata-compatible pinning service. Uploads are not
// retried here; the caller decides whether to try again.
type Client struct {
	http       *resty.Client
	gatewayURL string
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func NewClient(apiURL, gatewayURL, jwt string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(apiURL, "/")).
		SetTimeout(timeout)
	if jwt != "" {
		httpClient.SetAuthToken(jwt)
	}
	if gatewayURL == "" {
		gatewayURL = "https://gateway.pinata.cloud/ipfs"
	}
	return &Client{
		http:       httpClient,
		gatewayURL: strings.TrimRight(gatewayURL, "/"),
	}
}

// UploadFile pins a single file and returns its content hash with metadata.
func (c *Client) UploadFile(ctx context.Context, file FileUpload) (UploadedFile, error) {
	if c == nil || c.http == nil {
		return UploadedFile{}, ErrNotConfigured
	}
	if len(file.Data) == 0 {
		return UploadedFile{}, fmt.Errorf("%s: %w", file.Name, ErrEmptyFile)
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(file.Name)))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var out pinResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", file.Name, bytes.NewReader(file.Data)).
		SetMultipartFormData(map[string]string{
			"pinataMetadata": fmt.Sprintf(`{"name":%q}`, file.Name),
		}).
		SetResult(&out).
		Post("/pinning/pinFileToIPFS")
	if err := checkResponse(resp, err); err != nil {
		return UploadedFile{}, fmt.Errorf("upload %s: %w", file.Name, err)
	}
	if out.IpfsHash == "" {
		return UploadedFile{}, fmt.Errorf("upload %s: %w", file.Name, ErrEmptyHash)
	}

	return UploadedFile{
		OriginalName: file.Name,
		Hash:         out.IpfsHash,
		Size:         int64(len(file.Data)),
		Type:         contentType,
	}, nil
}

// UploadJSON pins an arbitrary JSON-serialisable value under the given name.
func (c *Client) UploadJSON(ctx context.Context, value any, name string) (string, error) {
	if c == nil || c.http == nil {
		return "", ErrNotConfigured
	}

	body := map[string]any{
		"pinataContent":  value,
		"pinataMetadata": map[string]string{"name": name},
	}

	var out pinResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		Post("/pinning/pinJSONToIPFS")
	if err := checkResponse(resp, err); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	if out.IpfsHash == "" {
		return "", fmt.Errorf("upload %s: %w", name, ErrEmptyHash)
	}
	return out.IpfsHash, nil
}

// GatewayURL is the public retrieval URL for a content hash.
func (c *Client) GatewayURL(hash string) string {
	return c.gatewayURL + "/" + hash
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: status %d: %s", ErrUploadFailed, resp.StatusCode(), truncate(resp.String(), 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
