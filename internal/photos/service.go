package photos

import (
	"context"
	"time"

	"github.com/mpss/storefront/internal/cache"
	"go.uber.org/zap"
)

// Service renders resized photos, keeping the encoded bytes in a cache
// keyed by the response ETag.
type Service struct {
	library *Library
	cache   cache.Cache
	ttl     time.Duration
	logger  *zap.Logger
}

func NewService(library *Library, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{library: library, cache: c, ttl: ttl, logger: logger}
}

func (s *Service) Library() *Library { return s.library }

type Rendered struct {
	Body        []byte
	ContentType string
	ETag        string
}

// Render returns the resized image for filename. Cache failures are logged
// and the image is rendered anyway.
func (s *Service) Render(ctx context.Context, filename string, opts Options) (*Rendered, error) {
	path, err := s.library.Path(filename)
	if err != nil {
		return nil, err
	}

	contentType, err := ContentType(filename)
	if err != nil {
		return nil, err
	}

	etag := opts.ETag(filename)
	key := s.cache.GenerateKey("photo", etag)

	if body, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("photo cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return &Rendered{Body: body, ContentType: contentType, ETag: etag}, nil
	}

	body, err := Resize(path, opts)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, body, s.ttl); err != nil {
		s.logger.Warn("photo cache write failed", zap.String("key", key), zap.Error(err))
	}

	return &Rendered{Body: body, ContentType: contentType, ETag: etag}, nil
}
