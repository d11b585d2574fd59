// Package core defines the shared language of the sqltype system.
//
// This package contains:
//   - Value types (Type, Unresolvable, StatusType)
//   - Column references and the per-statement AST (SelectStmt, InsertStmt, ...)
//   - Analysis results (Param, RowShape, Result)
//   - The parsing stages reported by errors
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
