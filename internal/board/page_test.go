package board

import (
	"testing"
)

func stroke(n int) Operation {
	return Operation{
		Type:   OpDraw,
		Points: []Point{{X: float64(n), Y: float64(n)}},
		UserID: 1,
	}
}

func TestPageAppendOrder(t *testing.T) {
	p := NewPage("main", 10)

	for i := 0; i < 3; i++ {
		p.Append(stroke(i))
	}

	ops := p.Operations()
	if len(ops) != 3 {
		t.Fatalf("expected 3 operations, got %d", len(ops))
	}
	for i, op := range ops {
		if op.Points[0].X != float64(i) {
			t.Errorf("operation %d out of order: got x=%v", i, op.Points[0].X)
		}
	}
}

func TestPageUndoRedoBounds(t *testing.T) {
	p := NewPage("main", 10)

	if p.Undo() {
		t.Error("undo on empty page should report false")
	}
	if p.Redo() {
		t.Error("redo on empty page should report false")
	}

	p.Append(stroke(0))
	p.Append(stroke(1))

	if !p.CanUndo() || p.CanRedo() {
		t.Errorf("after appends: canUndo=%v canRedo=%v", p.CanUndo(), p.CanRedo())
	}

	if !p.Undo() {
		t.Fatal("first undo should succeed")
	}
	if !p.Undo() {
		t.Fatal("second undo should succeed")
	}
	if p.Undo() {
		t.Error("undo past the oldest operation should report false")
	}

	if !p.Redo() || !p.Redo() {
		t.Fatal("redo back to the top should succeed twice")
	}
	if p.Redo() {
		t.Error("redo past the newest operation should report false")
	}
}

func TestPageAppendTruncatesRedoTail(t *testing.T) {
	p := NewPage("main", 10)

	p.Append(stroke(0))
	p.Append(stroke(1))
	p.Append(stroke(2))
	p.Undo()
	p.Undo()

	// A new operation at cursor position 1 discards the two undone ones.
	p.Append(stroke(9))

	ops := p.Operations()
	if len(ops) != 2 {
		t.Fatalf("expected 2 operations after truncating redo tail, got %d", len(ops))
	}
	if ops[1].Points[0].X != 9 {
		t.Errorf("newest operation should be the replacement, got x=%v", ops[1].Points[0].X)
	}
	if p.CanRedo() {
		t.Error("redo tail should be gone after append")
	}
}

func TestPageHistoryCapDropsOldest(t *testing.T) {
	p := NewPage("main", 3)

	for i := 0; i < 5; i++ {
		p.Append(stroke(i))
	}

	ops := p.Operations()
	if len(ops) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(ops))
	}
	if ops[0].Points[0].X != 2 {
		t.Errorf("oldest surviving operation should be #2, got x=%v", ops[0].Points[0].X)
	}
	if p.Cursor() != 3 {
		t.Errorf("cursor should sit at the cap, got %d", p.Cursor())
	}
}

func TestPageClear(t *testing.T) {
	p := NewPage("main", 10)
	p.Append(stroke(0))
	p.Append(stroke(1))

	p.Clear()

	if p.Len() != 0 || p.Cursor() != 0 {
		t.Errorf("clear should reset history and cursor: len=%d cursor=%d", p.Len(), p.Cursor())
	}
	if p.CanUndo() || p.CanRedo() {
		t.Error("cleared page should have no undo/redo headroom")
	}
}

func TestValidShape(t *testing.T) {
	for _, s := range []string{ShapeRectangle, ShapeCircle, ShapeLine, ShapeArrow, ShapeDiamond} {
		if !ValidShape(s) {
			t.Errorf("%q should be a valid shape", s)
		}
	}
	if ValidShape("triangle") {
		t.Error("unsupported shape should be rejected")
	}
}
