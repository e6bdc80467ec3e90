// Package main is a one-shot command that summarizes a conversation file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/capitalize-ai/conversation-summarizer/internal/app"
	"github.com/capitalize-ai/conversation-summarizer/internal/config"
	"github.com/capitalize-ai/conversation-summarizer/internal/middleware"
	"github.com/capitalize-ai/conversation-summarizer/internal/model"
	"github.com/capitalize-ai/conversation-summarizer/internal/service"
	"github.com/capitalize-ai/conversation-summarizer/internal/summary"
	"github.com/capitalize-ai/conversation-summarizer/pkg/logger"
)

// newTransport is replaced in tests.
var newTransport = func(cfg *config.Config, log *logger.Logger) summary.Transport {
	return app.NewTransport(cfg, log)
}

type options struct {
	file     string
	orgFile  string
	orgID    int64
	language string
	verbose  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize a conversation with the configured language models",
		Long: `Reads a conversation as JSON ({"messages":[{"role":"user","content":"..."}]})
from --file, or stdin when --file is "-", and prints its summary.

Models, retry policy and API keys come from the same environment variables as the API server.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "-", "conversation JSON file, - for stdin")
	cmd.Flags().StringVar(&opts.orgFile, "org-file", "", "organizations YAML file (defaults to ORGANIZATIONS_FILE)")
	cmd.Flags().Int64Var(&opts.orgID, "org", 0, "organization id to summarize for")
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "language of the summary")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline diagnostics to stderr")

	return cmd
}

func run(ctx context.Context, stdin io.Reader, stdout io.Writer, opts options) error {
	cfg := config.Load()
	if opts.orgFile != "" {
		cfg.OrganizationsFile = opts.orgFile
	}

	log := logger.NewNop()
	if opts.verbose {
		l, err := logger.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer l.Sync()
		log = l
	}

	req, err := readRequest(stdin, opts.file)
	if err != nil {
		return err
	}
	if opts.language != "" {
		req.Language = opts.language
	}
	if err := middleware.ValidateSummaryRequest(req); err != nil {
		return fmt.Errorf("invalid conversation: %w", err)
	}

	org, err := resolveOrganization(ctx, cfg, opts.orgID, log)
	if err != nil {
		return err
	}

	pipeline := app.NewPipeline(cfg, newTransport(cfg, log), log)
	svc := service.NewSummaryService(pipeline.Summarizer, service.NewOrganizationService(log, org), cfg.SummaryTimeout, log)

	resp, err := svc.Summarize(ctx, "cli", org.ID, req)
	if err != nil {
		return err
	}
	if resp.Summary == "" {
		log.Warn("models returned an empty summary", zap.String("conversation_id", req.ConversationID))
	}

	_, err = fmt.Fprintln(stdout, resp.Summary)
	return err
}

func readRequest(stdin io.Reader, path string) (*model.SummaryRequest, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open conversation: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req model.SummaryRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to decode conversation: %w", err)
	}
	return &req, nil
}

// resolveOrganization looks the profile up in the registry when one is
// configured. Without a registry an anonymous profile stands in.
func resolveOrganization(ctx context.Context, cfg *config.Config, id int64, log *logger.Logger) (model.OrganizationProfile, error) {
	if cfg.OrganizationsFile == "" {
		if id <= 0 {
			id = 1
		}
		return model.OrganizationProfile{ID: id}, nil
	}

	orgs, err := app.LoadOrganizations(cfg, log)
	if err != nil {
		return model.OrganizationProfile{}, err
	}
	if id <= 0 {
		return model.OrganizationProfile{}, errors.New("--org is required with an organizations file")
	}
	return orgs.Get(ctx, id)
}
