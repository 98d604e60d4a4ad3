package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/critiquest/critiquest/internal/catalog"
	"github.com/critiquest/critiquest/internal/config"
)

// LoadCatalog loads and validates the milestone catalog and level table.
// Any failure is fatal: the engine cannot run without a catalog.
func LoadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	c, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedLoadCatalog, err)
	}

	slog.Info(LogMsgCatalogLoaded,
		"path", cfg.CatalogPath,
		"version", c.Version(),
		"milestones", len(c.Milestones()),
		"max_level", c.Levels().MaxLevel())

	return c, nil
}
