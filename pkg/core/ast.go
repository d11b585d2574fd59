package core

// StatementKind identifies which statement parser produced an AST.
type StatementKind string

// Supported statement kinds.
const (
	KindSelect StatementKind = "SELECT"
	KindInsert StatementKind = "INSERT"
	KindUpdate StatementKind = "UPDATE"
	KindDelete StatementKind = "DELETE"
)

// Statement is implemented by every per-kind AST.
type Statement interface {
	Kind() StatementKind

	// PrimaryTable is the default table for unqualified column references:
	// the first table reference of a SELECT, the target of everything else.
	PrimaryTable() string

	// Placeholders returns one column reference per `?`, in source order.
	Placeholders() []ColumnRef
}

// JoinKind records how a table reference was attached to the ones before it.
type JoinKind string

// Join kinds.
const (
	JoinNone         JoinKind = ""
	JoinComma        JoinKind = ","
	JoinInner        JoinKind = "INNER"
	JoinCross        JoinKind = "CROSS"
	JoinStraight     JoinKind = "STRAIGHT_JOIN"
	JoinLeft         JoinKind = "LEFT"
	JoinRight        JoinKind = "RIGHT"
	JoinNatural      JoinKind = "NATURAL"
	JoinNaturalLeft  JoinKind = "NATURAL LEFT"
	JoinNaturalRight JoinKind = "NATURAL RIGHT"
)

// TableRef is one table named in a FROM clause.
type TableRef struct {
	Name  string   `json:"name"`
	Alias string   `json:"alias,omitempty"`
	Join  JoinKind `json:"join,omitempty"`
}

// Projection is one entry of a select list.
type Projection struct {
	Ref   ColumnRef `json:"ref"`
	Alias string    `json:"alias,omitempty"`
}

// OutputName is the name the projection takes in a result row.
func (p Projection) OutputName() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.Ref.Column
}

// SelectStmt is a parsed SELECT.
type SelectStmt struct {
	Tables      []TableRef
	Projections []Projection
	Params      []ColumnRef
}

func (s *SelectStmt) Kind() StatementKind { return KindSelect }

func (s *SelectStmt) PrimaryTable() string {
	if len(s.Tables) == 0 {
		return ""
	}
	return s.Tables[0].Name
}

func (s *SelectStmt) Placeholders() []ColumnRef { return s.Params }

// InsertStmt is a parsed INSERT.
//
// When the statement has no column list, ImplicitColumns is set and each
// parameter's column is left empty until binding; Slots then holds the
// position of each parameter within its value row.
type InsertStmt struct {
	Table           string
	Columns         []string
	ImplicitColumns bool
	Rows            int
	Params          []ColumnRef
	Slots           []int
}

func (s *InsertStmt) Kind() StatementKind       { return KindInsert }
func (s *InsertStmt) PrimaryTable() string      { return s.Table }
func (s *InsertStmt) Placeholders() []ColumnRef { return s.Params }

// UpdateStmt is a parsed single-table UPDATE. Params lists the SET
// placeholders first, then the WHERE placeholders.
type UpdateStmt struct {
	Table     string
	Alias     string
	SetParams int
	Params    []ColumnRef
}

func (s *UpdateStmt) Kind() StatementKind       { return KindUpdate }
func (s *UpdateStmt) PrimaryTable() string      { return s.Table }
func (s *UpdateStmt) Placeholders() []ColumnRef { return s.Params }

// DeleteStmt is a parsed single-table DELETE.
type DeleteStmt struct {
	Table  string
	Alias  string
	Params []ColumnRef
}

func (s *DeleteStmt) Kind() StatementKind       { return KindDelete }
func (s *DeleteStmt) PrimaryTable() string      { return s.Table }
func (s *DeleteStmt) Placeholders() []ColumnRef { return s.Params }
