package ports

import (
	"context"

	"datalens/domain/configuration"
	"datalens/domain/core"
)

// ConfigurationStore persists analysis configurations per owner.
// Implementations keep at most one default per owner; SetDefault swaps the
// flag atomically.
type ConfigurationStore interface {
	List(ctx context.Context, owner core.OwnerID) ([]*configuration.AnalysisConfiguration, error)
	Get(ctx context.Context, owner core.OwnerID, id core.ConfigurationID) (*configuration.AnalysisConfiguration, error)
	GetDefault(ctx context.Context, owner core.OwnerID) (*configuration.AnalysisConfiguration, error)
	Save(ctx context.Context, cfg *configuration.AnalysisConfiguration) error
	Update(ctx context.Context, cfg *configuration.AnalysisConfiguration) error
	Delete(ctx context.Context, owner core.OwnerID, id core.ConfigurationID) error
	SetDefault(ctx context.Context, owner core.OwnerID, id core.ConfigurationID) error
}
