package commands

import (
	"github.com/spf13/cobra"

	"github.com/michaelhaar/type-safe-sql-query/internal/server"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Watch bool
}

// NewServeCommand creates the serve command. The port comes from the
// global config so that --port, SQLTYPE_SERVE__PORT and serve.port agree.
func NewServeCommand(version string) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer over HTTP",
		Long: `Start an HTTP server that analyzes statements for editors and build tools.

Endpoints:
  POST /api/analyze        {"query": "...", "strict": false}
  POST /api/analyze/batch  {"queries": ["...", "..."]}
  GET  /api/schema         tables and schema fingerprint
  GET  /api/events         server-sent events on schema reload
  GET  /api/runs           analyze run history
  GET  /healthz`,
		Example: `  sqltype serve --port 8766 --watch`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			s, err := cmdCtx.LoadSchema()
			if err != nil {
				return err
			}
			a, store, cleanup, err := cmdCtx.NewAnalyzer()
			if err != nil {
				return err
			}
			defer cleanup()

			srv, err := server.NewServer(server.Config{
				Analyzer:   a,
				Schema:     s,
				SchemaFile: cmdCtx.Cfg.SchemaFile,
				Store:      store,
				Port:       cmdCtx.Cfg.Serve.Port,
				Watch:      opts.Watch || cmdCtx.Cfg.Serve.Watch,
				Logger:     cmdCtx.Logger,
				Version:    version,
			})
			if err != nil {
				return err
			}
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().Int("port", 0, "Port to listen on (default from serve.port)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Reload the schema file when it changes")
	return cmd
}
