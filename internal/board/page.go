package board

// Page is one independent canvas unit inside a room: an ordered operation
// history plus a bounded undo/redo cursor. Append order is authoritative for
// replay; undo/redo only move the cursor, clients reconstruct pixels from
// their own local snapshots (last writer wins under concurrent edits).
type Page struct {
	Name string

	ops    []Operation
	cursor int // number of applied operations, in [0, len(ops)]
	cap    int
}

// NewPage 페이지 생성
func NewPage(name string, historyCap int) *Page {
	if historyCap <= 0 {
		historyCap = 1
	}
	return &Page{
		Name: name,
		cap:  historyCap,
	}
}

// Append commits an operation at the cursor, discarding any redo tail, and
// drops the oldest entry once the history cap is reached.
func (p *Page) Append(op Operation) {
	p.ops = append(p.ops[:p.cursor], op)
	if len(p.ops) > p.cap {
		p.ops = p.ops[len(p.ops)-p.cap:]
	}
	p.cursor = len(p.ops)
}

// Undo moves the cursor back one operation. Returns false at the lower bound.
func (p *Page) Undo() bool {
	if p.cursor == 0 {
		return false
	}
	p.cursor--
	return true
}

// Redo moves the cursor forward one operation. Returns false at the upper bound.
func (p *Page) Redo() bool {
	if p.cursor >= len(p.ops) {
		return false
	}
	p.cursor++
	return true
}

// Clear truncates the history and resets the cursor.
func (p *Page) Clear() {
	p.ops = nil
	p.cursor = 0
}

// Operations returns the full history in append order, for catch-up replay.
func (p *Page) Operations() []Operation {
	out := make([]Operation, len(p.ops))
	copy(out, p.ops)
	return out
}

// Len returns the history length.
func (p *Page) Len() int {
	return len(p.ops)
}

// Cursor returns the undo cursor position.
func (p *Page) Cursor() int {
	return p.cursor
}

// CanUndo/CanRedo report cursor headroom, surfaced to clients after
// undo/redo notices.
func (p *Page) CanUndo() bool { return p.cursor > 0 }
func (p *Page) CanRedo() bool { return p.cursor < len(p.ops) }
