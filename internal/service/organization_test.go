package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/conversation-summarizer/internal/model"
	"github.com/capitalize-ai/conversation-summarizer/pkg/logger"
)

const orgsYAML = `
organizations:
  - id: 1
    name: Acme
    description: Acme sells rockets.
  - id: 2
    name: Globex
    description: Globex does everything.
    matching_step_model: claude-3-opus-20240229
`

func TestDecodeOrganizations(t *testing.T) {
	orgs, err := DecodeOrganizations(strings.NewReader(orgsYAML))
	require.NoError(t, err)
	require.Len(t, orgs, 2)

	assert.Equal(t, model.OrganizationProfile{ID: 1, Name: "Acme", Description: "Acme sells rockets."}, orgs[0])
	assert.Equal(t, "claude-3-opus-20240229", orgs[1].MatchingStepModel)
}

func TestDecodeOrganizationsEmpty(t *testing.T) {
	orgs, err := DecodeOrganizations(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, orgs)
}

func TestDecodeOrganizationsRejectsBadIDs(t *testing.T) {
	_, err := DecodeOrganizations(strings.NewReader("organizations:\n  - name: nobody\n"))
	assert.Error(t, err)

	_, err = DecodeOrganizations(strings.NewReader("organizations:\n  - id: 1\n  - id: 1\n"))
	assert.ErrorContains(t, err, "duplicate")
}

func TestLoadOrganizations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orgs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(orgsYAML), 0o600))

	orgs, err := LoadOrganizations(path)
	require.NoError(t, err)
	assert.Len(t, orgs, 2)

	_, err = LoadOrganizations(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestOrganizationService(t *testing.T) {
	ctx := context.Background()
	svc := NewOrganizationService(logger.NewNop(),
		model.OrganizationProfile{ID: 2, Name: "Globex"},
		model.OrganizationProfile{ID: 1, Name: "Acme"},
	)

	org, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)

	_, err = svc.Get(ctx, 99)
	assert.ErrorIs(t, err, ErrOrganizationNotFound)

	list := svc.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)

	svc.Replace([]model.OrganizationProfile{{ID: 3, Name: "Initech"}})
	_, err = svc.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
	org, err = svc.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Initech", org.Name)
}
