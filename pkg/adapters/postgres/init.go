package postgres

import (
	"log/slog"

	"github.com/michaelhaar/type-safe-sql-query/pkg/adapter"
)

func init() {
	adapter.Register("postgres", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
