package service

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/lingvoclub/placement-backend/internal/config"
)

// ErrMediaNotFound means the requested attachment does not exist or the
// path escapes the media directory.
var ErrMediaNotFound = errors.New("media file not found")

// MediaService resolves question attachments (reading texts, audio clips)
// inside the configured media directory.
type MediaService struct {
	cfg *config.Config
}

// NewMediaService creates a new MediaService.
func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{cfg: cfg}
}

// Resolve maps a request path to an absolute file path inside MediaDir.
// Traversal outside the directory is rejected.
func (s *MediaService) Resolve(requestPath string) (string, error) {
	cleaned := filepath.Clean("/" + requestPath) // Forces the path absolute before joining.
	full := filepath.Join(s.cfg.MediaDir, cleaned)

	root, err := filepath.Abs(s.cfg.MediaDir)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(abs, root+string(os.PathSeparator)) {
		return "", ErrMediaNotFound
	}

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return "", ErrMediaNotFound
	}
	return abs, nil
}
