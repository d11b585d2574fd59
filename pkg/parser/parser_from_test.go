package parser_test

import (
	"testing"

	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/parser"
	"github.com/michaelhaar/type-safe-sql-query/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- Table reference lists ----------

func TestParseTableReferences(t *testing.T) {
	tests := []struct {
		name string
		from string
		want []core.TableRef
	}{
		{
			name: "single table",
			from: "users",
			want: []core.TableRef{{Name: "users"}},
		},
		{
			name: "bare alias",
			from: "users u",
			want: []core.TableRef{{Name: "users", Alias: "u"}},
		},
		{
			name: "comma list with aliases",
			from: "users AS u, posts p",
			want: []core.TableRef{
				{Name: "users", Alias: "u"},
				{Name: "posts", Alias: "p", Join: core.JoinComma},
			},
		},
		{
			name: "plain join with condition",
			from: "users JOIN posts ON users.id = posts.userId",
			want: []core.TableRef{
				{Name: "users"},
				{Name: "posts", Join: core.JoinInner},
			},
		},
		{
			name: "outer joins chain",
			from: "a LEFT OUTER JOIN b ON a.id = b.id RIGHT JOIN c USING (id, kind)",
			want: []core.TableRef{
				{Name: "a"},
				{Name: "b", Join: core.JoinLeft},
				{Name: "c", Join: core.JoinRight},
			},
		},
		{
			name: "parenthesized join group",
			from: "(a JOIN b ON a.id = b.id) LEFT JOIN c ON c.id = a.id",
			want: []core.TableRef{
				{Name: "a"},
				{Name: "b", Join: core.JoinInner},
				{Name: "c", Join: core.JoinLeft},
			},
		},
		{
			name: "group after comma inherits the comma",
			from: "a, (b CROSS JOIN c)",
			want: []core.TableRef{
				{Name: "a"},
				{Name: "b", Join: core.JoinComma},
				{Name: "c", Join: core.JoinCross},
			},
		},
		{
			name: "condition with nested parentheses",
			from: "a JOIN b ON (a.id = b.id AND (a.x = b.x)) JOIN c ON c.id = b.id",
			want: []core.TableRef{
				{Name: "a"},
				{Name: "b", Join: core.JoinInner},
				{Name: "c", Join: core.JoinInner},
			},
		},
		{
			name: "lower case keywords",
			from: "users u left join posts p on u.id = p.userId",
			want: []core.TableRef{
				{Name: "users", Alias: "u"},
				{Name: "posts", Alias: "p", Join: core.JoinLeft},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.ParseTableReferences(token.Tokenize(tt.from))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ---------- Join operator families ----------

func TestParseTableReferences_JoinKinds(t *testing.T) {
	tests := []struct {
		from string
		want core.JoinKind
	}{
		{"a JOIN b", core.JoinInner},
		{"a INNER JOIN b", core.JoinInner},
		{"a CROSS JOIN b", core.JoinCross},
		{"a STRAIGHT_JOIN b ON a.id = b.id", core.JoinStraight},
		{"a LEFT JOIN b ON a.id = b.id", core.JoinLeft},
		{"a LEFT OUTER JOIN b ON a.id = b.id", core.JoinLeft},
		{"a RIGHT JOIN b ON a.id = b.id", core.JoinRight},
		{"a RIGHT OUTER JOIN b ON a.id = b.id", core.JoinRight},
		{"a NATURAL JOIN b", core.JoinNatural},
		{"a NATURAL INNER JOIN b", core.JoinNatural},
		{"a NATURAL LEFT JOIN b", core.JoinNaturalLeft},
		{"a NATURAL LEFT OUTER JOIN b", core.JoinNaturalLeft},
		{"a NATURAL RIGHT JOIN b", core.JoinNaturalRight},
		{"a NATURAL RIGHT OUTER JOIN b", core.JoinNaturalRight},
	}

	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			got, err := parser.ParseTableReferences(token.Tokenize(tt.from))
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "a", got[0].Name)
			assert.Equal(t, "b", got[1].Name)
			assert.Equal(t, tt.want, got[1].Join)
		})
	}
}

// ---------- Malformed references ----------

func TestParseTableReferences_Errors(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		wantErr error
	}{
		{"empty", "", parser.ErrMissingClause},
		{"left without join", "a LEFT b ON a.id = b.id", parser.ErrMalformedJoin},
		{"cross without join", "a CROSS b", parser.ErrMalformedJoin},
		{"natural outer", "a NATURAL OUTER JOIN b", parser.ErrMalformedJoin},
		{"dangling join", "a JOIN", parser.ErrMalformedJoin},
		{"join keyword as table", "JOIN b", parser.ErrMalformedJoin},
		{"unbalanced group", "(a JOIN b", parser.ErrMalformedJoin},
		{"using without list", "a JOIN b USING id", parser.ErrMalformedJoin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseTableReferences(token.Tokenize(tt.from))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var pe *parser.ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}
