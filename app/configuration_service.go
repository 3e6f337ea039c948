package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"datalens/domain/configuration"
	"datalens/domain/core"
	"datalens/internal/assembler"
	apperrors "datalens/internal/errors"
	"datalens/ports"
)

// ConfigurationService owns the one-default-per-owner rule on top of a
// ConfigurationStore.
type ConfigurationService struct {
	store ports.ConfigurationStore
	clock func() time.Time
	// mu serializes writes within a process.
	mu sync.Mutex
}

func NewConfigurationService(store ports.ConfigurationStore) *ConfigurationService {
	return &ConfigurationService{store: store, clock: time.Now}
}

// List returns the owner's stored configurations, default first.
func (s *ConfigurationService) List(ctx context.Context, owner core.OwnerID) ([]*configuration.AnalysisConfiguration, error) {
	return s.store.List(ctx, owner)
}

func (s *ConfigurationService) Get(ctx context.Context, owner core.OwnerID, id core.ConfigurationID) (*configuration.AnalysisConfiguration, error) {
	return s.store.Get(ctx, owner, id)
}

// GetDefault returns the owner's default, or the built-in default preset when
// the owner has stored nothing.
func (s *ConfigurationService) GetDefault(ctx context.Context, owner core.OwnerID) (*configuration.AnalysisConfiguration, error) {
	cfg, err := s.store.GetDefault(ctx, owner)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, core.ErrConfigurationNotFound) {
		return nil, err
	}
	builtin := configuration.Default()
	builtin.OwnerID = owner
	builtin.IsDefault = true
	return builtin, nil
}

// Resolve picks the configuration for a report run: an explicit id, a preset
// name, or the owner's default, in that order.
func (s *ConfigurationService) Resolve(ctx context.Context, owner core.OwnerID, id core.ConfigurationID, preset string) (*configuration.AnalysisConfiguration, error) {
	switch {
	case id != "":
		return s.Get(ctx, owner, id)
	case strings.TrimSpace(preset) != "":
		cfg, ok := configuration.Preset(preset)
		if !ok {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown preset %q; available: %s",
				preset, strings.Join(configuration.PresetNames(), ", ")))
		}
		cfg.OwnerID = owner
		return cfg, nil
	}
	return s.GetDefault(ctx, owner)
}

// Create stores a new configuration. The owner's first configuration becomes
// the default regardless of the flag.
func (s *ConfigurationService) Create(ctx context.Context, owner core.OwnerID, cfg *configuration.AnalysisConfiguration) (*configuration.AnalysisConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := cfg.Clone()
	now := s.clock().UTC()
	c.ID = core.NewConfigurationID()
	c.OwnerID = owner
	c.SchemaVersion = configuration.SchemaVersion
	c.Version = 1
	c.CreatedAt, c.UpdatedAt = now, now
	if err := assembler.CheckConfiguration(c); err != nil {
		return nil, err
	}

	existing, err := s.store.List(ctx, owner)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list configurations")
	}
	if len(existing) == 0 {
		c.IsDefault = true
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, apperrors.Wrap(err, "failed to save configuration")
	}
	log.Printf("[ConfigurationService] created %s %q for %s (default=%t)", c.ID, c.Name, owner, c.IsDefault)
	return c, nil
}

// CreateFromPreset stores a copy of a built-in preset under a new name.
func (s *ConfigurationService) CreateFromPreset(ctx context.Context, owner core.OwnerID, preset, name string) (*configuration.AnalysisConfiguration, error) {
	cfg, ok := configuration.Preset(preset)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown preset %q", preset))
	}
	if strings.TrimSpace(name) != "" {
		cfg.Name = name
	}
	return s.Create(ctx, owner, cfg)
}

// Update replaces a stored configuration and bumps its version. A default
// configuration stays default; move the flag with SetDefault instead.
func (s *ConfigurationService) Update(ctx context.Context, owner core.OwnerID, id core.ConfigurationID, cfg *configuration.AnalysisConfiguration) (*configuration.AnalysisConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	c := cfg.Clone()
	c.ID = current.ID
	c.OwnerID = owner
	c.SchemaVersion = configuration.SchemaVersion
	c.Version = current.Version + 1
	c.IsDefault = current.IsDefault || cfg.IsDefault
	c.CreatedAt = current.CreatedAt
	c.UpdatedAt = s.clock().UTC()
	if err := assembler.CheckConfiguration(c); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, c); err != nil {
		return nil, apperrors.Wrap(err, "failed to update configuration")
	}
	return c, nil
}

// Delete removes a configuration. Deleting the default promotes the most
// recently updated remaining configuration.
func (s *ConfigurationService) Delete(ctx context.Context, owner core.OwnerID, id core.ConfigurationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, owner, id); err != nil {
		return err
	}
	if !current.IsDefault {
		return nil
	}
	remaining, err := s.store.List(ctx, owner)
	if err != nil {
		return apperrors.Wrap(err, "failed to list configurations")
	}
	if len(remaining) == 0 {
		return nil
	}
	next := remaining[0]
	for _, c := range remaining[1:] {
		if c.UpdatedAt.After(next.UpdatedAt) {
			next = c
		}
	}
	if err := s.store.SetDefault(ctx, owner, next.ID); err != nil {
		return apperrors.Wrap(err, "failed to promote default configuration")
	}
	log.Printf("[ConfigurationService] promoted %s to default for %s", next.ID, owner)
	return nil
}

// SetDefault marks id as the owner's only default.
func (s *ConfigurationService) SetDefault(ctx context.Context, owner core.OwnerID, id core.ConfigurationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.SetDefault(ctx, owner, id)
}
