package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger-explorer/internal/present"
	"github.com/mark3labs/swagger-explorer/internal/request"
	"github.com/mark3labs/swagger-explorer/internal/spec"
)

// app bundles what a command needs once configuration is resolved.
type app struct {
	cfg    *Config
	repo   *spec.Repository
	out    io.Writer
	logger log.Interface
}

// newApp resolves configuration and sets up logging and colors. It does not
// load the document.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.NoColor {
		present.SetColor(false)
	}
	return &app{
		cfg:    cfg,
		out:    cmd.OutOrStdout(),
		logger: newLogger(cmd.ErrOrStderr(), cfg.Verbose),
	}, nil
}

// loadApp is newApp plus the document named by --spec.
func loadApp(cmd *cobra.Command) (*app, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, err
	}
	if err := a.cfg.requireSpec(cmd.Name()); err != nil {
		return nil, err
	}
	if err := a.load(cmd.Context()); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) load(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	doc, err := spec.Load(ctx, a.cfg.Spec, spec.WithLogger(a.logger))
	if err != nil {
		return describeSpecError(err)
	}
	a.repo = spec.NewRepository(doc)
	a.logger.WithFields(log.Fields{
		"spec":      a.cfg.Spec,
		"endpoints": len(a.repo.Endpoints()),
		"base_url":  a.repo.BaseURL(),
	}).Debug("document loaded")
	return nil
}

func (a *app) executor() *request.Executor {
	return request.NewExecutor(
		request.WithHTTPClient(&http.Client{Timeout: a.cfg.Timeout}),
		request.WithLogger(a.logger),
	)
}

func (a *app) jsonOutput() bool { return a.cfg.Output == outputJSON }

func (a *app) writeJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLogger(w io.Writer, verbose bool) log.Interface {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return &log.Logger{Handler: clihandler.New(w), Level: level}
}
