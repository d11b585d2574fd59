package schema

import (
	"fmt"
	"os"

	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a schema file.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a schema document of the form
//
//	tables:
//	  users:
//	    id: number
//	    name: string
//
// The document is walked as a node tree so that table and column order
// survive decoding.
func Parse(data []byte) (*Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if len(doc.Content) == 0 {
		return New()
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: schema must be a mapping", root.Line)
	}
	tablesNode := mappingValue(root, "tables")
	if tablesNode == nil {
		return nil, fmt.Errorf("schema has no tables key")
	}
	if isNull(tablesNode) {
		return New()
	}
	if tablesNode.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: tables must map table names to columns", tablesNode.Line)
	}

	tables := make([]Table, 0, len(tablesNode.Content)/2)
	for i := 0; i+1 < len(tablesNode.Content); i += 2 {
		nameNode, colsNode := tablesNode.Content[i], tablesNode.Content[i+1]
		table := Table{Name: nameNode.Value}

		if !isNull(colsNode) {
			if colsNode.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("line %d: table %q must map column names to types", colsNode.Line, table.Name)
			}
			for j := 0; j+1 < len(colsNode.Content); j += 2 {
				colNode, typeNode := colsNode.Content[j], colsNode.Content[j+1]
				if typeNode.Kind != yaml.ScalarNode || isNull(typeNode) {
					return nil, fmt.Errorf("line %d: column %s.%s must have a scalar type", typeNode.Line, table.Name, colNode.Value)
				}
				table.Columns = append(table.Columns, Column{Name: colNode.Value, Type: core.Type(typeNode.Value)})
			}
		}
		tables = append(tables, table)
	}
	return New(tables...)
}

// MarshalYAML encodes the schema in the format read by Parse.
func (s *Schema) MarshalYAML() (any, error) {
	tablesNode := &yaml.Node{Kind: yaml.MappingNode}
	for _, t := range s.tables {
		colsNode := &yaml.Node{Kind: yaml.MappingNode}
		for _, c := range t.Columns {
			colsNode.Content = append(colsNode.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: c.Name},
				&yaml.Node{Kind: yaml.ScalarNode, Value: string(c.Type)},
			)
		}
		if len(t.Columns) == 0 {
			colsNode.Style = yaml.FlowStyle
		}
		tablesNode.Content = append(tablesNode.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: t.Name},
			colsNode,
		)
	}
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "tables"},
			tablesNode,
		},
	}, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}
