package sqlite

import (
	"log/slog"

	"github.com/michaelhaar/type-safe-sql-query/pkg/adapter"
)

func init() {
	adapter.Register("sqlite", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}
