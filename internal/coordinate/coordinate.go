// Package coordinate is the single place where editor coordinates (0-indexed
// lines) are translated to and from the internal canonical coordinate
// system (1-indexed lines, 0-indexed columns). No other package should
// perform this arithmetic; centralizing it here is what makes the boundary
// conversion a round-trip law instead of a scattered off-by-one hazard.
package coordinate

import "github.com/codegraphls/codegraphls/internal/graph"

// Position is an editor-protocol position: 0-indexed line, 0-indexed column.
type Position struct {
	Line int
	Col  int
}

// ToInternal converts an editor position into internal (line+1, col) form.
func ToInternal(p Position) (line, col int) {
	return p.Line + 1, p.Col
}

// FromInternal converts an internal (1-indexed line, 0-indexed col) pair
// back into an editor Position.
func FromInternal(line, col int) Position {
	return Position{Line: line - 1, Col: col}
}

// EditorRange is an editor-protocol range: start/end Positions, 0-indexed lines.
type EditorRange struct {
	Start Position
	End   Position
}

// ToEditorRange converts an internal IndexRange to editor coordinates.
func ToEditorRange(r graph.IndexRange) EditorRange {
	return EditorRange{
		Start: FromInternal(r.StartLine, r.StartCol),
		End:   FromInternal(r.EndLine, r.EndCol),
	}
}

// ToIndexRange converts an editor EditorRange to the internal IndexRange.
func ToIndexRange(r EditorRange) graph.IndexRange {
	sl, sc := ToInternal(r.Start)
	el, ec := ToInternal(r.End)
	return graph.IndexRange{StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec}
}
