// Package postgres reads table definitions from PostgreSQL through the
// pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/michaelhaar/type-safe-sql-query/pkg/adapter"
)

// DefaultSchema is introspected when the target names none.
const DefaultSchema = "public"

// Params holds PostgreSQL-specific settings from target.params.
type Params struct {
	ApplicationName string `mapstructure:"application_name"`
	ConnectTimeout  int    `mapstructure:"connect_timeout"`
	SearchPath      string `mapstructure:"search_path"`
}

// ParseParams decodes target.params.
func ParseParams(raw map[string]any) (*Params, error) {
	p := &Params{}
	if len(raw) == 0 {
		return p, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid postgres params: %w", err)
	}
	return p, nil
}

// Adapter implements adapter.Adapter for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates an unconnected adapter. A nil logger discards output.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger}}
}

// DialectName returns "postgres".
func (a *Adapter) DialectName() string {
	return "postgres"
}

// Connect opens and pings the database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	params, err := ParseParams(cfg.Params)
	if err != nil {
		return err
	}
	dsn := buildDSN(cfg, params)

	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// Tables lists the base tables of the target schema.
func (a *Adapter) Tables(ctx context.Context) ([]string, error) {
	return a.TablesCommon(ctx, a.schema(), adapter.DollarPlaceholder)
}

// TableColumns returns a table's columns with their data_type names.
func (a *Adapter) TableColumns(ctx context.Context, table string) ([]adapter.Column, error) {
	return a.TableColumnsCommon(ctx, table, a.schema(), adapter.DollarPlaceholder)
}

func (a *Adapter) schema() string {
	if a.Cfg.Schema != "" {
		return a.Cfg.Schema
	}
	return DefaultSchema
}

// buildDSN renders a key=value connection string.
func buildDSN(cfg adapter.Config, params *Params) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	parts := []string{
		fmt.Sprintf("host=%s", host),
		fmt.Sprintf("port=%d", port),
		fmt.Sprintf("dbname=%s", cfg.Database),
		fmt.Sprintf("sslmode=%s", sslmode),
	}
	if cfg.Username != "" {
		parts = append(parts, fmt.Sprintf("user=%s", cfg.Username))
	}
	if cfg.Password != "" {
		parts = append(parts, fmt.Sprintf("password=%s", cfg.Password))
	}
	if params.ApplicationName != "" {
		parts = append(parts, fmt.Sprintf("application_name=%s", params.ApplicationName))
	}
	if params.ConnectTimeout > 0 {
		parts = append(parts, fmt.Sprintf("connect_timeout=%d", params.ConnectTimeout))
	}
	if params.SearchPath != "" {
		parts = append(parts, fmt.Sprintf("search_path=%s", params.SearchPath))
	}
	return strings.Join(parts, " ")
}

var _ adapter.Adapter = (*Adapter)(nil)
