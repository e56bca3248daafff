package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mediakit/offload/internal/apperrors"
	"github.com/mediakit/offload/internal/logger"
	"github.com/mediakit/offload/internal/metrics"
	"github.com/mediakit/offload/internal/models"
	"github.com/mediakit/offload/internal/repository"
	"github.com/mediakit/offload/internal/service/preset"
)

// Mode decides which assets the gateway offloads on the created event
type Mode string

const (
	// Offload image attachments only, leave documents local
	ModeImages Mode = "images"

	// Offload every file the host reports, images or not
	ModeAll Mode = "all"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeImages, ModeAll:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown offload mode %q (want images or all)", s)
	}
}

// Fallback thumbnail box when the host registry declares none
var defaultThumbnail = preset.Size{Name: models.VariantThumbnail, Width: 150, Height: 150, Crop: true}

type mediaClient interface {
	Upload(ctx context.Context, localPath string, remoteDir string) (string, error)
	Delete(ctx context.Context, remotePath string) error
}

type Config struct {
	// Absolute path of the host upload root, e.g. /var/www/uploads
	UploadRoot string

	Mode Mode
}

// Service keeps asset records and local files consistent with the remote
// store. On upload failure of any kind the asset stays un-migrated with
// its local file intact, so rendering degrades to local serving instead of
// breaking.
type Service struct {
	cfg     Config
	client  mediaClient
	storage repository.Storage
	presets *preset.Registry
	logger  logger.Logger

	// Overridable in tests to inject failures between steps
	removeFile func(string) error
}

func NewService(cfg Config, client mediaClient, storage repository.Storage, presets *preset.Registry, l logger.Logger) *Service {
	if cfg.Mode == "" {
		cfg.Mode = ModeImages
	}
	if presets == nil {
		presets = preset.NewRegistry()
	}

	return &Service{
		cfg:        cfg,
		client:     client,
		storage:    storage,
		presets:    presets,
		logger:     l,
		removeFile: os.Remove,
	}
}

// SuppressesLocalSizes tells the host not to derive local renditions for
// assets bound to this gateway: any locally derived size metadata would be
// overwritten on the next migration write anyway.
func (s *Service) SuppressesLocalSizes() bool {
	return true
}

// IsMigrated reports whether the asset's authoritative copy is remote
func (s *Service) IsMigrated(ctx context.Context, assetID uuid.UUID) (bool, error) {
	asset, err := s.storage.Asset().Get(ctx, assetID)
	if err != nil {
		return false, err
	}

	_, remote := asset.Location().(models.RemoteLocation)
	return remote, nil
}

// OnCreated handles the asset-created host event: record the asset, upload
// it, and remove the local copy once the migrated record is durable.
//
// Ordering invariant: the local file is deleted only after the migrated
// record is persisted. A crash between upload and persistence leaves the
// local file as the fallback source of truth, never a lost asset.
func (s *Service) OnCreated(ctx context.Context, assetID uuid.UUID, localPath string) (models.Asset, error) {
	relPath, err := s.relativePath(localPath)
	if err != nil {
		return models.Asset{}, err
	}

	mimeType, err := detectMimeType(localPath)
	if err != nil {
		return models.Asset{}, err
	}

	asset, err := s.ensureRecord(ctx, models.Asset{
		ID:           assetID,
		RelativePath: relPath,
		MimeType:     mimeType,
	})
	if err != nil {
		return asset, err
	}

	if s.cfg.Mode == ModeImages && !asset.IsImage() {
		s.logger.Debug("Skipping non-image asset", "asset_id", assetID, "mime_type", mimeType)
		return asset, nil
	}

	return s.migrate(ctx, asset, localPath)
}

// OnEdited handles edit-and-resave: the host regenerated the file locally,
// so the same asset is uploaded again and the remote metadata refreshed
func (s *Service) OnEdited(ctx context.Context, assetID uuid.UUID, localPath string) (models.Asset, error) {
	asset, err := s.storage.Asset().Get(ctx, assetID)
	switch {
	case errors.Is(err, apperrors.ErrAssetNotFound):
		return s.OnCreated(ctx, assetID, localPath)
	case err != nil:
		return asset, err
	}

	relPath, err := s.relativePath(localPath)
	if err != nil {
		return asset, err
	}

	mimeType, err := detectMimeType(localPath)
	if err != nil {
		return asset, err
	}

	asset.RelativePath = relPath
	asset.MimeType = mimeType
	return s.migrate(ctx, asset, localPath)
}

// OnDeleted handles the asset-deleted host event. The remote delete is best
// effort: a failure leaves a remote orphan and is logged, but never blocks
// the local delete flow already in progress.
func (s *Service) OnDeleted(ctx context.Context, assetID uuid.UUID) (remoteDeleted bool, err error) {
	asset, err := s.storage.Asset().Get(ctx, assetID)
	switch {
	case errors.Is(err, apperrors.ErrAssetNotFound):
		return false, nil
	case err != nil:
		return false, err
	}

	loc, migrated := asset.Location().(models.RemoteLocation)
	if migrated {
		// Nothing remote to clean up otherwise, so no network call
		if err := s.client.Delete(ctx, loc.RelativePath); err != nil {
			s.logger.Warn("Remote cleanup failed, orphan may remain",
				"asset_id", assetID,
				"remote_path", loc.RelativePath,
				"error", err,
			)
		} else {
			remoteDeleted = true
		}
	}

	if err := s.storage.Asset().Delete(ctx, assetID); err != nil {
		return remoteDeleted, err
	}

	return remoteDeleted, nil
}

// migrate runs the upload procedure for an already recorded asset
func (s *Service) migrate(ctx context.Context, asset models.Asset, localPath string) (models.Asset, error) {
	remoteDir := relativeDir(asset.RelativePath)

	remotePath, err := s.client.Upload(ctx, localPath, remoteDir)
	if err != nil {
		return asset, fmt.Errorf("asset %s: %w", asset.ID, err)
	}

	asset.RelativePath = remotePath
	if asset.IsImage() {
		// Probe dimensions before the local file goes away
		width, height, probeErr := probeDimensions(localPath)
		if probeErr != nil {
			s.logger.Debug("Could not probe image dimensions", "asset_id", asset.ID, "error", probeErr)
		}
		asset.Width = width
		asset.Height = height
		asset.Variants = s.synthesizeVariants(asset)
	}

	persisted, err := s.storage.Asset().SetMigrated(ctx, asset)
	if err != nil {
		// Upload went through but the record did not: keep the local file,
		// the asset stays un-migrated and fully retryable
		s.logger.Warn("Uploaded but failed to persist record, remote orphan possible",
			"asset_id", asset.ID,
			"remote_path", remotePath,
			"error", err,
		)
		return asset, fmt.Errorf("asset %s: failed to record migration: %w", asset.ID, err)
	}

	if err := s.removeFile(localPath); err != nil {
		// Record is durable, the leftover local copy is harmless
		s.logger.Warn("Failed to remove local file after migration", "asset_id", asset.ID, "path", localPath, "error", err)
	}

	kind := "document"
	if persisted.IsImage() {
		kind = "image"
	}
	metrics.Migrations.WithLabelValues(kind).Inc()
	s.logger.Info("Asset migrated", "asset_id", asset.ID, "remote_path", remotePath)

	return persisted, nil
}

// synthesizeVariants reconstructs the size metadata local image processing
// would have produced: the original, a thumbnail, and every host preset
// with its realized dimensions.
func (s *Service) synthesizeVariants(asset models.Asset) []models.Variant {
	fileName := path.Base(asset.RelativePath)

	variants := []models.Variant{{
		Name:     models.VariantOriginal,
		FileName: fileName,
		Width:    asset.Width,
		Height:   asset.Height,
		MimeType: asset.MimeType,
	}}

	sizes := s.presets.All()
	if _, ok := s.presets.Get(models.VariantThumbnail); !ok {
		sizes = append([]preset.Size{defaultThumbnail}, sizes...)
	}

	for _, size := range sizes {
		width, height := size.Realize(asset.Width, asset.Height)
		variants = append(variants, models.Variant{
			Name:     size.Name,
			FileName: fileName,
			Width:    width,
			Height:   height,
			MimeType: asset.MimeType,
		})
	}

	return variants
}

func (s *Service) ensureRecord(ctx context.Context, asset models.Asset) (models.Asset, error) {
	created, err := s.storage.Asset().Create(ctx, asset)
	switch {
	case err == nil:
		return created, nil
	case errors.Is(err, apperrors.ErrAssetExists):
		return s.storage.Asset().Get(ctx, asset.ID)
	default:
		return asset, err
	}
}

// relativePath strips the upload root, keeping the intermediate directory
// and file name the remote service mirrors
func (s *Service) relativePath(localPath string) (string, error) {
	rel, err := filepath.Rel(s.cfg.UploadRoot, localPath)
	if err != nil {
		return "", fmt.Errorf("path %q is not under upload root %q: %w", localPath, s.cfg.UploadRoot, err)
	}

	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("path %q escapes upload root %q", localPath, s.cfg.UploadRoot)
	}

	return rel, nil
}

// relativeDir is the destination hint sent with the upload: the asset's
// directory under the upload root, without the file name
func relativeDir(relPath string) string {
	dir := path.Dir(relPath)
	if dir == "." {
		return ""
	}
	return dir
}
