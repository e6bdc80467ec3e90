// Package service provides business logic for the conversation summarizer.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/capitalize-ai/conversation-summarizer/internal/model"
	"github.com/capitalize-ai/conversation-summarizer/pkg/logger"
)

// ErrOrganizationNotFound is returned for unknown organization IDs.
var ErrOrganizationNotFound = errors.New("organization not found")

// organizationsFile is the on-disk layout of the organizations file.
type organizationsFile struct {
	Organizations []model.OrganizationProfile `yaml:"organizations"`
}

// OrganizationService holds the read-only organization profiles.
type OrganizationService struct {
	logger *logger.Logger

	organizations map[int64]model.OrganizationProfile
	mu            sync.RWMutex
}

// NewOrganizationService creates a service over the given profiles.
func NewOrganizationService(log *logger.Logger, orgs ...model.OrganizationProfile) *OrganizationService {
	s := &OrganizationService{
		logger:        log,
		organizations: make(map[int64]model.OrganizationProfile, len(orgs)),
	}
	for _, org := range orgs {
		s.organizations[org.ID] = org
	}
	return s
}

// LoadOrganizations reads organization profiles from a YAML file.
func LoadOrganizations(path string) ([]model.OrganizationProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open organizations file: %w", err)
	}
	defer f.Close()

	return DecodeOrganizations(f)
}

// DecodeOrganizations parses organization profiles from YAML.
func DecodeOrganizations(r io.Reader) ([]model.OrganizationProfile, error) {
	var file organizationsFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode organizations: %w", err)
	}

	seen := make(map[int64]bool, len(file.Organizations))
	for _, org := range file.Organizations {
		if org.ID <= 0 {
			return nil, fmt.Errorf("organization %q: id must be positive", org.Name)
		}
		if seen[org.ID] {
			return nil, fmt.Errorf("organization %d: duplicate id", org.ID)
		}
		seen[org.ID] = true
	}

	return file.Organizations, nil
}

// Get retrieves an organization profile by ID. The returned value is a copy.
func (s *OrganizationService) Get(ctx context.Context, id int64) (model.OrganizationProfile, error) {
	s.mu.RLock()
	org, exists := s.organizations[id]
	s.mu.RUnlock()

	if !exists {
		return model.OrganizationProfile{}, fmt.Errorf("%w: %d", ErrOrganizationNotFound, id)
	}

	return org, nil
}

// List returns all organization profiles ordered by ID.
func (s *OrganizationService) List(ctx context.Context) []model.OrganizationProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orgs := make([]model.OrganizationProfile, 0, len(s.organizations))
	for _, org := range s.organizations {
		orgs = append(orgs, org)
	}
	sort.Slice(orgs, func(i, j int) bool { return orgs[i].ID < orgs[j].ID })
	return orgs
}

// Replace swaps the whole set of profiles, e.g. after the file was reloaded.
func (s *OrganizationService) Replace(orgs []model.OrganizationProfile) {
	next := make(map[int64]model.OrganizationProfile, len(orgs))
	for _, org := range orgs {
		next[org.ID] = org
	}

	s.mu.Lock()
	s.organizations = next
	s.mu.Unlock()

	s.logger.Info("organizations loaded", zap.Int("count", len(orgs)))
}
