package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depscope/internal/server"
	"github.com/matzehuels/depscope/internal/watch"
	"github.com/matzehuels/depscope/pkg/pipeline"
	"github.com/matzehuels/depscope/pkg/session"
)

type serveOpts struct {
	addr     string
	watch    string
	detailed bool
}

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the report API over HTTP",
		Long: `Serve the HTTP API used by the report viewer.

Upload a report with POST /generate (multipart field "file"), then query it
through /api/*. With --watch the given report is parsed at startup and again
whenever it changes, each time replacing the latest session.

Sessions are kept in the store selected by store.backend (memory, file,
redis or mongo).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				opts.addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address (default from config)")
	cmd.Flags().StringVar(&opts.watch, "watch", "", "report to parse now and re-parse on change")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show coordinates in node labels")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	runner, err := c.newRunner()
	if err != nil {
		return err
	}
	defer runner.Close()

	store, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	sessions := session.NewManager(store, c.Logger)
	defer sessions.Close()

	popts := c.Config.PipelineOptions()

	if opts.watch != "" {
		reload := func(ctx context.Context, path string) error {
			return c.publishFile(ctx, runner, sessions, path, popts)
		}
		if err := reload(ctx, opts.watch); err != nil {
			return err
		}
		w, err := watch.New(opts.watch, reload, c.Logger)
		if err != nil {
			return err
		}
		w.Start(ctx)
		defer w.Stop()
		printInfo("Watching %s", opts.watch)
	}

	srv := server.New(runner, sessions, server.Options{
		AllowedOrigins:    c.Config.Server.AllowedOrigins,
		MaxUploadBytes:    c.Config.Server.MaxUploadBytes,
		AutocompleteLimit: c.Config.Server.AutocompleteLimit,
		RenderTimeout:     c.Config.Server.RenderTimeout.Duration,
		Detailed:          opts.detailed,
		Parse:             popts,
	}, c.Logger)

	printSuccess("Serving on %s", opts.addr)
	printKeyValue("Store", c.Config.Store.Backend)
	host := opts.addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	printNextStep("Upload a report", "curl -F file=@deps.txt http://"+host+"/generate")
	return srv.ListenAndServe(ctx, opts.addr)
}

// publishFile parses path and makes it the latest session.
func (c *CLI) publishFile(ctx context.Context, runner *pipeline.Runner, sessions *session.Manager, path string, opts pipeline.Options) error {
	res, err := runner.IngestFile(ctx, path, opts)
	if err != nil {
		return err
	}
	if err := sessions.Publish(ctx, res.Snapshot); err != nil {
		return err
	}
	c.Logger.Info("published session", "id", res.Snapshot.ID, "source", path)
	return nil
}
