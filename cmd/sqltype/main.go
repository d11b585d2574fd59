// Package main provides the CLI for sqltype.
package main

import (
	"os"

	"github.com/michaelhaar/type-safe-sql-query/internal/cli"

	// Register database adapters used by schema dump.
	_ "github.com/michaelhaar/type-safe-sql-query/pkg/adapters/duckdb"
	_ "github.com/michaelhaar/type-safe-sql-query/pkg/adapters/postgres"
	_ "github.com/michaelhaar/type-safe-sql-query/pkg/adapters/sqlite"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
