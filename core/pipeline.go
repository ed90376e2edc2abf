package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"musicdl/drm"
	"musicdl/enums"
	"musicdl/ext"
	"musicdl/models"
	"musicdl/plugins"
	"musicdl/util"
	"musicdl/util/libav"
	"musicdl/util/mp4box"
	"musicdl/util/parser"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Options struct {
	Config         *models.EnvConfig
	Client         models.HTTPClient
	OutputDir      string
	CredentialPath string // explicit override, must exist when set
	Key            string // caller-supplied content key, skips negotiation
	KeySystem      drm.KeySystemFactory
	ShowProgress   bool

	// Decrypt runs the decryption engine, libav.DecryptFile by default.
	Decrypt func(keyHex, inputPath, outputPath string, metadata map[string]string) error
}

type Result struct {
	Track    *models.TrackInfo
	Source   models.SourceReference
	FilePath string
	Size     int64
}

type Pipeline struct {
	opts     Options
	resolver *parser.ManifestResolver
}

func New(opts Options) *Pipeline {
	if opts.OutputDir == "" {
		opts.OutputDir = opts.Config.DownloadsDirectory
	}
	if opts.Decrypt == nil {
		opts.Decrypt = libav.DecryptFile
	}
	return &Pipeline{
		opts: opts,
		resolver: parser.NewManifestResolver(
			opts.Client,
			opts.Config.StreamOrigin,
			opts.Config.SiteOrigin,
		),
	}
}

// Run acquires the track behind pageURL: metadata, then a direct
// download attempt, then the protected stream when the direct source
// is gated or absent.
func (p *Pipeline) Run(ctx context.Context, pageURL string) (*Result, error) {
	zap.S().Info("fetching song page...")
	extractor, info, err := ext.Extract(ctx, p.opts.Client, pageURL)
	if err != nil {
		return nil, err
	}
	zap.S().Infof("title: %s", info.Title)
	zap.S().Infof("artist: %s", info.Artist)

	if err := util.EnsureDownloadDir(p.opts.OutputDir); err != nil {
		return nil, err
	}

	result, err := p.tryDirect(ctx, info)
	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, util.ErrProtectedSource):
		zap.S().Info("direct download not available (song uses DRM streaming)")
	default:
		return nil, err
	}

	if !extractor.IsDRM {
		return nil, util.ErrDirectOnly
	}
	return p.runProtected(ctx, info)
}

// tryDirect answers ErrProtectedSource when the track has no usable
// direct source or the source is gated.
func (p *Pipeline) tryDirect(ctx context.Context, info *models.TrackInfo) (*Result, error) {
	source := info.Source()
	if source == nil {
		return nil, util.ErrProtectedSource
	}
	fileName := util.SafeFilename(info.Artist, info.Title, enums.MediaCodecMP3.Extension())
	filePath := filepath.Join(p.opts.OutputDir, fileName)

	zap.S().Infof("downloading: %s", fileName)
	size, err := util.DownloadFile(ctx, p.opts.Client, source.Location, filePath, &models.DownloadConfig{
		ShowProgress: p.opts.ShowProgress,
	})
	if err != nil {
		return nil, err
	}
	if err := plugins.SetID3(filePath, info); err != nil {
		zap.S().Warnf("failed to tag %s: %v", fileName, err)
	}
	zap.S().Infof("saved to: %s (%s)", filePath, humanize.Bytes(uint64(size)))
	return &Result{
		Track:    info,
		Source:   *source,
		FilePath: filePath,
		Size:     size,
	}, nil
}

func (p *Pipeline) runProtected(ctx context.Context, info *models.TrackInfo) (*Result, error) {
	if !info.HasID() {
		return nil, util.ErrUnknownTrackID
	}

	var keyHex string
	if p.opts.Key != "" {
		normalized, err := util.NormalizeKeyHex(p.opts.Key)
		if err != nil {
			return nil, err
		}
		keyHex = normalized
	}

	zap.S().Info("fetching stream info...")
	manifest, err := p.resolver.Resolve(ctx, info.ID)
	if err != nil {
		return nil, err
	}
	zap.S().Infof("key id: %s", manifest.KeyID)
	zap.S().Infof("segments: %d + init", len(manifest.MediaSegmentURIs))

	if keyHex == "" {
		key, err := p.negotiateKey(ctx, manifest)
		if err != nil {
			return nil, err
		}
		keyHex = key.Hex()
	}

	fileName := util.SafeFilename(info.Artist, info.Title, enums.MediaCodecAAC.Extension())
	filePath := filepath.Join(p.opts.OutputDir, fileName)
	zap.S().Infof("downloading DRM stream: %s", fileName)

	encryptedPath, err := p.assemble(ctx, manifest)
	if err != nil {
		return nil, err
	}
	defer util.RemoveFile(encryptedPath)

	zap.S().Info("decrypting with ffmpeg...")
	err = p.opts.Decrypt(keyHex, encryptedPath, filePath, plugins.ContainerMetadata(info))
	if err != nil {
		return nil, err
	}

	size := fileSize(filePath)
	if probe, err := mp4box.ProbeAudio(filePath); err != nil {
		zap.S().Warnf("could not inspect output: %v", err)
	} else {
		if probe.Encrypted {
			zap.S().Warn("output still carries encrypted tracks")
		}
		zap.S().Debugf("output duration: %.1fs", probe.Duration)
	}
	zap.S().Infof("saved to: %s (%s)", filePath, humanize.Bytes(uint64(size)))

	return &Result{
		Track: info,
		Source: models.SourceReference{
			Kind:     enums.SourceKindProtected,
			Location: p.resolver.ManifestURL(info.ID),
		},
		FilePath: filePath,
		Size:     size,
	}, nil
}

// negotiateKey locates the device credential and runs the license
// exchange. without a credential or a key system the run halts with
// KeyRequiredError.
func (p *Pipeline) negotiateKey(ctx context.Context, manifest *models.StreamManifest) (*models.ContentKey, error) {
	if p.opts.KeySystem == nil {
		if p.opts.CredentialPath != "" || p.opts.Config.CDMPath != "" {
			zap.S().Warn("no key-system implementation in this build, device credential ignored")
		}
		return nil, p.keyRequired(manifest, false)
	}
	credentialPath, err := drm.LocateCredential(
		p.opts.CredentialPath,
		p.opts.Config.CDMPath,
		p.opts.Config.ConfigDirectory,
	)
	if err != nil {
		return nil, err
	}
	if credentialPath == "" {
		return nil, p.keyRequired(manifest, true)
	}
	credential, err := drm.LoadCredential(credentialPath)
	if err != nil {
		return nil, err
	}

	zap.S().Infof("using CDM: %s", credentialPath)
	zap.S().Info("acquiring content key...")
	negotiator := drm.NewNegotiator(
		p.opts.Client,
		p.opts.KeySystem,
		credential,
		p.opts.Config.LicenseURL,
		p.opts.Config.SiteOrigin,
	)
	return negotiator.Negotiate(ctx, manifest)
}

func (p *Pipeline) keyRequired(manifest *models.StreamManifest, negotiable bool) *KeyRequiredError {
	return &KeyRequiredError{
		KeyID:            manifest.KeyID,
		ProtectionHeader: manifest.ProtectionHeaderBase64(),
		LicenseURL:       p.opts.Config.LicenseURL,
		ConfigDir:        p.opts.Config.ConfigDirectory,
		Negotiable:       negotiable,
	}
}

// assemble writes the encrypted stream to a temporary file in the
// output directory. the file is removed if assembly fails.
func (p *Pipeline) assemble(ctx context.Context, manifest *models.StreamManifest) (string, error) {
	encryptedPath := filepath.Join(p.opts.OutputDir, uuid.NewString()+".enc.m4a")
	file, err := os.Create(encryptedPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	headers := map[string]string{}
	if p.opts.Config.SiteOrigin != "" {
		headers["Origin"] = p.opts.Config.SiteOrigin
	}
	_, err = util.AssembleSegments(
		ctx, p.opts.Client,
		manifest.InitSegmentURI,
		manifest.MediaSegmentURIs,
		file,
		&models.DownloadConfig{
			Headers:      headers,
			ShowProgress: p.opts.ShowProgress,
		},
	)
	closeErr := file.Close()
	if err != nil {
		util.RemoveFile(encryptedPath)
		return "", err
	}
	if closeErr != nil {
		util.RemoveFile(encryptedPath)
		return "", fmt.Errorf("failed to close temporary file: %w", closeErr)
	}
	return encryptedPath, nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
