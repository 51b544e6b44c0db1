// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contentstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/taibuivan/yomira-publish/internal/platform/constants"
)

const (
	pinFilePath = "/pinning/pinFileToIPFS"
	pinJSONPath = "/pinning/pinJSONToIPFS"

	headerAPIKey    = "pinata_api_key"
	headerSecretKey = "pinata_secret_api_key"

	// maxResponseBody bounds how much of a pin response is read.
	maxResponseBody = 64 << 10
)

// HTTPDoer is the subset of *http.Client used by [PinataClient].
type HTTPDoer interface {
	Do(request *http.Request) (*http.Response, error)
}

// PinataConfig holds the credentials and endpoint of a Pinata-compatible service.
type PinataConfig struct {
	BaseURL   string
	APIKey    string
	SecretKey string
}

// PinataClient implements [Store] against the Pinata pinning API.
type PinataClient struct {
	cfg           PinataConfig
	httpClient    HTTPDoer
	logger        *slog.Logger
	jsonTimeout   time.Duration
	binaryTimeout time.Duration
}

// PinataOption customizes the client.
type PinataOption func(*PinataClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) PinataOption {
	return func(c *PinataClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeouts overrides the per-request deadlines. Zero keeps the default.
func WithTimeouts(jsonTimeout, binaryTimeout time.Duration) PinataOption {
	return func(c *PinataClient) {
		if jsonTimeout > 0 {
			c.jsonTimeout = jsonTimeout
		}
		if binaryTimeout > 0 {
			c.binaryTimeout = binaryTimeout
		}
	}
}

// NewPinataClient constructs a client. Deadlines come from the request
// context, so the default HTTP client carries no timeout of its own.
func NewPinataClient(cfg PinataConfig, logger *slog.Logger, opts ...PinataOption) *PinataClient {
	client := &PinataClient{
		cfg: PinataConfig{
			BaseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			APIKey:    strings.TrimSpace(cfg.APIKey),
			SecretKey: strings.TrimSpace(cfg.SecretKey),
		},
		httpClient:    &http.Client{},
		logger:        logger,
		jsonTimeout:   constants.ContentStoreJSONTimeout,
		binaryTimeout: constants.ContentStoreBinaryTimeout,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://api.pinata.cloud"
	}
	if client.logger == nil {
		client.logger = slog.Default()
	}
	return client
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type pinJSONRequest struct {
	PinataContent  json.RawMessage `json:"pinataContent"`
	PinataMetadata Metadata        `json:"pinataMetadata"`
}

/*
UploadBytes pins a binary buffer as a multipart upload.

Parameters:
  - ctx: Parent context; the binary deadline is applied on top of it.
  - data: The bytes to pin.
  - filename: Name recorded for the multipart file part.
  - metadata: Pin metadata.

Returns:
  - string: The CID reported by the service.
  - error: *StorageError, *StorageTimeoutError or transport failures.
*/
func (c *PinataClient) UploadBytes(ctx context.Context, data []byte, filename string, metadata Metadata) (string, error) {
	const operation = "upload bytes"

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("content store: build multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("content store: write multipart: %w", err)
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("content store: encode metadata: %w", err)
	}
	if err := writer.WriteField("pinataMetadata", string(metadataJSON)); err != nil {
		return "", fmt.Errorf("content store: write metadata: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("content store: close multipart: %w", err)
	}

	cid, err := c.post(ctx, operation, pinFilePath, writer.FormDataContentType(), body.Bytes(), c.binaryTimeout)
	if err != nil {
		return "", err
	}

	c.logger.DebugContext(ctx, "content_pinned",
		slog.String("cid", cid),
		slog.String("filename", filename),
		slog.String("size", humanize.IBytes(uint64(len(data)))),
	)
	return cid, nil
}

// UploadJSON pins a canonicalised JSON document.
func (c *PinataClient) UploadJSON(ctx context.Context, document any, metadata Metadata) (string, error) {
	const operation = "upload json"

	canonical, err := CanonicalJSON(document)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(pinJSONRequest{PinataContent: canonical, PinataMetadata: metadata})
	if err != nil {
		return "", fmt.Errorf("content store: encode pin request: %w", err)
	}

	cid, err := c.post(ctx, operation, pinJSONPath, "application/json", payload, c.jsonTimeout)
	if err != nil {
		return "", err
	}

	c.logger.DebugContext(ctx, "document_pinned", slog.String("cid", cid), slog.String("name", metadata.Name))
	return cid, nil
}

func (c *PinataClient) post(ctx context.Context, operation, path, contentType string, body []byte, timeout time.Duration) (string, error) {
	requestCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(requestCtx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("content store: build request: %w", err)
	}
	request.Header.Set("Content-Type", contentType)
	request.Header.Set(headerAPIKey, c.cfg.APIKey)
	request.Header.Set(headerSecretKey, c.cfg.SecretKey)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", transportError(ctx, operation, timeout, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBody))
	if err != nil {
		return "", transportError(ctx, operation+": read response", timeout, err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", newStorageError(operation, response.StatusCode, responseBody)
	}

	var parsed pinResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return "", fmt.Errorf("content store: %s: decode response: %w", operation, err)
	}
	if parsed.IpfsHash == "" {
		return "", newStorageError(operation, response.StatusCode, responseBody)
	}

	return parsed.IpfsHash, nil
}

// transportError classifies a failed round trip. Only the per-call deadline
// becomes a [*StorageTimeoutError]; an expired or cancelled parent context
// is returned wrapped as is.
func transportError(parent context.Context, operation string, limit time.Duration, err error) error {
	if parentErr := parent.Err(); parentErr != nil {
		return fmt.Errorf("content store: %s: %w", operation, parentErr)
	}
	if isTimeout(err) {
		return &StorageTimeoutError{Operation: operation, Limit: limit}
	}
	return fmt.Errorf("content store: %s: %w", operation, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
