package settings

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Load resolves the settings stored at location. An empty location means the
// default layout. Fetch failures are returned; a document with the wrong
// shape or with placements off the page is replaced by the default layout.
func (s *Service) Load(ctx context.Context, location string) (RenderSettings, error) {
	if location == "" {
		return Default(), nil
	}

	raw, err := s.repo.Fetch(ctx, location)
	if err != nil {
		return RenderSettings{}, fmt.Errorf("failed to fetch render settings: %w", err)
	}

	parsed, ok := Parse(raw)
	if !ok {
		s.logger.Warn("Render settings rejected, using default layout",
			zap.String("location", location))
	}
	return parsed, nil
}
