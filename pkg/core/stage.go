package core

// Stage is a step of the statement parsing state machine. Every statement
// parser walks the stages in order and never revisits one.
type Stage int

// Parsing stages.
const (
	StageInit Stage = iota
	StageStripModifiers
	StageExtractPrimaryTable
	StageExtractClauses
	StageExtractPlaceholders
	StageBind
	StageDone
)

var stageNames = [...]string{
	StageInit:                "init",
	StageStripModifiers:      "strip modifiers",
	StageExtractPrimaryTable: "extract primary table",
	StageExtractClauses:      "extract clauses",
	StageExtractPlaceholders: "extract placeholders",
	StageBind:                "bind",
	StageDone:                "done",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}
