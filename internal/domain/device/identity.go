// Package device manages the player instance identity so browser clients
// can tell instances apart.
package device

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Info is the identity pushed to clients.
type Info struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// Service loads or generates the instance identity and persists it as JSON
// under the data directory. Identity is instance configuration, not user
// data, so it survives restarts.
type Service struct {
	mu         sync.RWMutex
	configPath string
	info       Info
}

// NewService loads the identity from configPath, generating and persisting
// a fresh one when none exists.
func NewService(configPath string) (*Service, error) {
	svc := &Service{configPath: configPath}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	if err := svc.load(); err != nil {
		log.Debug().Err(err).Msg("No existing device identity, generating one")
		svc.info = Info{
			UUID: uuid.New().String(),
			Name: defaultName(),
		}
		if err := svc.save(); err != nil {
			return nil, fmt.Errorf("save device identity: %w", err)
		}
	}

	log.Info().Str("uuid", svc.info.UUID).Str("name", svc.info.Name).Msg("Device identity initialized")
	return svc, nil
}

// GetInfo returns the current identity.
func (s *Service) GetInfo() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// SetName updates the instance name and persists it.
func (s *Service) SetName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.info.Name = name
	return s.save()
}

func (s *Service) load() error {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return err
	}

	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return fmt.Errorf("invalid identity file: %w", err)
	}
	if info.UUID == "" {
		return fmt.Errorf("identity file missing uuid")
	}
	if info.Name == "" {
		info.Name = defaultName()
	}

	s.info = info
	return nil
}

func (s *Service) save() error {
	data, err := json.MarshalIndent(s.info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.configPath, data, 0644)
}

func defaultName() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return "Lytte"
	}
	return hostname
}
