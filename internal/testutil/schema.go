package testutil

import (
	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/schema"
)

// SchemaYAML is the YAML form of Schema.
const SchemaYAML = `tables:
  users:
    id: number
    name: string
    country: '"AT"|"DE"'
  posts:
    id: number
    userId: number
    title: string
`

// Schema returns the users/posts schema used across tests.
func Schema() *schema.Schema {
	return schema.MustNew(
		schema.Table{Name: "users", Columns: []schema.Column{
			{Name: "id", Type: "number"},
			{Name: "name", Type: "string"},
			{Name: "country", Type: core.Type(`"AT"|"DE"`)},
		}},
		schema.Table{Name: "posts", Columns: []schema.Column{
			{Name: "id", Type: "number"},
			{Name: "userId", Type: "number"},
			{Name: "title", Type: "string"},
		}},
	)
}
