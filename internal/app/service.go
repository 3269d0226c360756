package app

import (
	"fmt"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/miumc/portal/internal/store"
)

// Service bundles the process-wide dependencies handed to every
// handler: configuration, the storage pool, and the classroom
// capability flag probed once at startup.
type Service struct {
	Config             *Config
	Store              store.PortalStore
	ClassroomAvailable bool
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := NewStore(config.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	return &Service{
		Config: config,
		Store:  store,
	}, nil
}

// ProbeClassroom checks once whether the optional classroom tables are
// provisioned. When they are not, the classroom endpoints degrade to
// empty results instead of failing.
func (s *Service) ProbeClassroom() error {
	available, err := s.Store.HasClassroomTables()
	if err != nil {
		return fmt.Errorf("failed to probe classroom capability: %w", err)
	}

	s.ClassroomAvailable = available
	if !available {
		logger.Info.Printf("Classroom tables not provisioned, classroom endpoints degrade to empty results")
	}
	return nil
}

func (s *Service) Close() error {
	if err := s.Store.Close(); err != nil {
		return fmt.Errorf("error while closing store: %w", err)
	}
	return nil
}
