// Package memory holds process-local implementations of the persistence ports,
// used by the CLI and when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"datalens/domain/configuration"
	"datalens/domain/core"
	"datalens/ports"
)

// ConfigurationStore keeps configurations in a map guarded by a mutex.
type ConfigurationStore struct {
	mu      sync.RWMutex
	byOwner map[core.OwnerID]map[core.ConfigurationID]*configuration.AnalysisConfiguration
}

var _ ports.ConfigurationStore = (*ConfigurationStore)(nil)

func NewConfigurationStore() *ConfigurationStore {
	return &ConfigurationStore{byOwner: make(map[core.OwnerID]map[core.ConfigurationID]*configuration.AnalysisConfiguration)}
}

func (s *ConfigurationStore) List(ctx context.Context, owner core.OwnerID) ([]*configuration.AnalysisConfiguration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*configuration.AnalysisConfiguration, 0, len(s.byOwner[owner]))
	for _, cfg := range s.byOwner[owner] {
		out = append(out, cfg.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *ConfigurationStore) Get(ctx context.Context, owner core.OwnerID, id core.ConfigurationID) (*configuration.AnalysisConfiguration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.byOwner[owner][id]
	if !ok {
		return nil, core.ErrConfigurationNotFound
	}
	return cfg.Clone(), nil
}

func (s *ConfigurationStore) GetDefault(ctx context.Context, owner core.OwnerID) (*configuration.AnalysisConfiguration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cfg := range s.byOwner[owner] {
		if cfg.IsDefault {
			return cfg.Clone(), nil
		}
	}
	return nil, core.ErrConfigurationNotFound
}

func (s *ConfigurationStore) Save(ctx context.Context, cfg *configuration.AnalysisConfiguration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := s.byOwner[cfg.OwnerID]
	if owned == nil {
		owned = make(map[core.ConfigurationID]*configuration.AnalysisConfiguration)
		s.byOwner[cfg.OwnerID] = owned
	}
	if cfg.IsDefault {
		clearDefault(owned)
	}
	owned[cfg.ID] = cfg.Clone()
	return nil
}

func (s *ConfigurationStore) Update(ctx context.Context, cfg *configuration.AnalysisConfiguration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := s.byOwner[cfg.OwnerID]
	if _, ok := owned[cfg.ID]; !ok {
		return core.ErrConfigurationNotFound
	}
	if cfg.IsDefault {
		clearDefault(owned)
	}
	owned[cfg.ID] = cfg.Clone()
	return nil
}

func (s *ConfigurationStore) Delete(ctx context.Context, owner core.OwnerID, id core.ConfigurationID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byOwner[owner][id]; !ok {
		return core.ErrConfigurationNotFound
	}
	delete(s.byOwner[owner], id)
	return nil
}

func (s *ConfigurationStore) SetDefault(ctx context.Context, owner core.OwnerID, id core.ConfigurationID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := s.byOwner[owner]
	target, ok := owned[id]
	if !ok {
		return core.ErrConfigurationNotFound
	}
	clearDefault(owned)
	target.IsDefault = true
	return nil
}

func clearDefault(owned map[core.ConfigurationID]*configuration.AnalysisConfiguration) {
	for _, cfg := range owned {
		cfg.IsDefault = false
	}
}
