package mediaapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mediakit/offload/internal/apperrors"
	"github.com/mediakit/offload/internal/logger"
	"github.com/mediakit/offload/internal/metrics"
	"github.com/mediakit/offload/internal/models"
)

// Form field names of the upload endpoint
const (
	uploadFileField = "media"
	uploadPathField = "path"
)

// Limit on response bodies read into memory; the API answers with small
// JSON documents
const maxResponseBytes = 1 << 20

type tokenSource interface {
	Token(ctx context.Context, scope models.Scope) (models.AccessToken, error)
}

// Client performs authenticated upload and delete calls against the media
// service. It never retries: retry policy belongs to the caller.
type Client struct {
	cfg        Config
	tokens     tokenSource
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(cfg Config, tokens tokenSource, l logger.Logger) *Client {
	return &Client{
		cfg:        cfg.withDefaults(),
		tokens:     tokens,
		httpClient: &http.Client{},
		logger:     l,
	}
}

// Upload sends the local file to the media service, placing it under the
// given remote directory. Returns the path the remote service now serves
// the file at.
//
// Error kinds: apperrors.ErrAuthFailed (no credential),
// apperrors.ErrLocalFileMissing (no such local file),
// apperrors.ErrTransportFailed (connection or timeout),
// apperrors.ErrRemoteRejected (response without explicit success).
func (c *Client) Upload(ctx context.Context, localPath string, remoteDir string) (string, error) {
	token, err := c.tokens.Token(ctx, models.ScopeUpload)
	if err != nil {
		metrics.Uploads.WithLabelValues(metrics.OutcomeAuth).Inc()
		return "", fmt.Errorf("upload needs a credential: %w", err)
	}

	file, err := os.Open(localPath)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%q: %w", localPath, apperrors.ErrLocalFileMissing)
	default:
		return "", fmt.Errorf("failed to open %q: %w", localPath, err)
	}
	defer file.Close() // nolint:errcheck

	ctx, cancel := context.WithTimeout(ctx, c.cfg.UploadTimeout)
	defer cancel()

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUploadForm(form, file, remoteDir)) // nolint:errcheck
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.endpoint("/api/upload"), pr)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", token.Authorization())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.Uploads.WithLabelValues(metrics.OutcomeTransport).Inc()
		return "", fmt.Errorf("upload request failed: %v: %w", err, apperrors.ErrTransportFailed)
	}
	defer resp.Body.Close() // nolint:errcheck

	if err := decodeOutcome(resp); err != nil {
		metrics.Uploads.WithLabelValues(metrics.OutcomeRejected).Inc()
		c.logger.Warn("Upload rejected", "path", localPath, "status_code", resp.StatusCode)
		return "", err
	}

	remotePath := path.Join(strings.Trim(remoteDir, "/"), filepath.Base(localPath))
	metrics.Uploads.WithLabelValues(metrics.OutcomeOK).Inc()
	c.logger.Info("Asset uploaded", "remote_path", remotePath)
	return remotePath, nil
}

// Delete removes the file at the given remote path, best effort: the remote
// service gives no idempotency promise for unknown paths.
func (c *Client) Delete(ctx context.Context, remotePath string) error {
	token, err := c.tokens.Token(ctx, models.ScopeDelete)
	if err != nil {
		metrics.RemoteDeletes.WithLabelValues(metrics.OutcomeAuth).Inc()
		return fmt.Errorf("delete needs a credential: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.DeleteTimeout)
	defer cancel()

	query := url.Values{}
	query.Set("path", remotePath)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodDelete,
		c.cfg.endpoint("/api/delete")+"?"+query.Encode(),
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	req.Header.Set("Authorization", token.Authorization())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RemoteDeletes.WithLabelValues(metrics.OutcomeTransport).Inc()
		return fmt.Errorf("delete request failed: %v: %w", err, apperrors.ErrTransportFailed)
	}
	defer resp.Body.Close() // nolint:errcheck

	if err := decodeOutcome(resp); err != nil {
		metrics.RemoteDeletes.WithLabelValues(metrics.OutcomeRejected).Inc()
		c.logger.Warn("Remote delete rejected", "remote_path", remotePath, "status_code", resp.StatusCode)
		return err
	}

	metrics.RemoteDeletes.WithLabelValues(metrics.OutcomeOK).Inc()
	c.logger.Info("Remote asset deleted", "remote_path", remotePath)
	return nil
}

func writeUploadForm(form *multipart.Writer, file *os.File, remoteDir string) error {
	if err := form.WriteField(uploadPathField, remoteDir); err != nil {
		return err
	}

	part, err := form.CreateFormFile(uploadFileField, filepath.Base(file.Name()))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}

	return form.Close()
}

// decodeOutcome applies the strict success policy: only a 2xx response
// whose JSON body carries "success": true counts. Absence of an error is
// not sufficient.
func decodeOutcome(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d: %w", resp.StatusCode, apperrors.ErrRemoteRejected)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %v: %w", err, apperrors.ErrTransportFailed)
	}

	var outcome struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &outcome); err != nil {
		return fmt.Errorf("unparsable response body: %v: %w", err, apperrors.ErrRemoteRejected)
	}

	if !outcome.Success {
		return fmt.Errorf("response carries no success indicator: %w", apperrors.ErrRemoteRejected)
	}

	return nil
}
