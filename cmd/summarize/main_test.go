package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/conversation-summarizer/internal/config"
	"github.com/capitalize-ai/conversation-summarizer/internal/llm"
	"github.com/capitalize-ai/conversation-summarizer/internal/summary"
	"github.com/capitalize-ai/conversation-summarizer/pkg/logger"
)

type fakeTransport struct {
	prompts [][]llm.ChatMessage
}

func (f *fakeTransport) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.prompts = append(f.prompts, req.Messages)
	return &llm.CompletionResponse{Content: "Customer wants a refund"}, nil
}

func useFakeTransport(t *testing.T) *fakeTransport {
	t.Helper()
	fake := &fakeTransport{}
	orig := newTransport
	newTransport = func(*config.Config, *logger.Logger) summary.Transport { return fake }
	t.Cleanup(func() { newTransport = orig })
	t.Setenv("ORGANIZATIONS_FILE", "")
	return fake
}

const conversation = `{"messages":[{"role":"user","content":"I want my money back"}]}`

func TestRunFromStdin(t *testing.T) {
	fake := useFakeTransport(t)
	var out bytes.Buffer

	err := run(context.Background(), strings.NewReader(conversation), &out, options{file: "-", language: "French"})

	require.NoError(t, err)
	assert.Equal(t, "Customer wants a refund\n", out.String())
	require.Len(t, fake.prompts, 1)
	assert.Contains(t, fake.prompts[0][0].Content, "French")
}

func TestRunWithOrganizationsFile(t *testing.T) {
	fake := useFakeTransport(t)
	dir := t.TempDir()
	conv := filepath.Join(dir, "conv.json")
	orgs := filepath.Join(dir, "orgs.yaml")
	require.NoError(t, os.WriteFile(conv, []byte(conversation), 0o600))
	require.NoError(t, os.WriteFile(orgs, []byte("organizations:\n  - id: 5\n    name: Globex\n"), 0o600))

	var out bytes.Buffer
	err := run(context.Background(), nil, &out, options{file: conv, orgFile: orgs, orgID: 5})

	require.NoError(t, err)
	assert.Equal(t, "Customer wants a refund\n", out.String())
	assert.Contains(t, fake.prompts[0][0].Content, "Globex")
}

func TestRunErrors(t *testing.T) {
	useFakeTransport(t)
	dir := t.TempDir()
	orgs := filepath.Join(dir, "orgs.yaml")
	require.NoError(t, os.WriteFile(orgs, []byte("organizations:\n  - id: 5\n    name: Globex\n"), 0o600))

	tests := []struct {
		name  string
		stdin string
		opts  options
	}{
		{"malformed json", `{`, options{file: "-"}},
		{"no messages", `{"messages":[]}`, options{file: "-"}},
		{"missing file", "", options{file: filepath.Join(dir, "missing.json")}},
		{"org required", conversation, options{file: "-", orgFile: orgs}},
		{"unknown org", conversation, options{file: "-", orgFile: orgs, orgID: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), strings.NewReader(tt.stdin), &bytes.Buffer{}, tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestRootCmdRejectsArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"extra"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}
