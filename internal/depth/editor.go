package depth

import (
	"errors"
	"sync"
)

var (
	ErrActive = errors.New("depth: edit session already active")
	ErrNoEdit = errors.New("depth: no edit session active")
)

// Brush values for the two stock tools. Raise paints near depth so the
// surface gains relief; Lower paints far depth and flattens it.
const (
	Raise uint8 = 0
	Lower uint8 = 255
)

// Tool selects the brush value and radius used by strokes.
type Tool struct {
	Value  uint8
	Radius int
}

// Editor owns a working depth field while the user paints on it. The field
// is private to the editor until Commit hands it back, so conversion never
// samples a field mid-stroke. All methods are safe for concurrent use.
type Editor struct {
	mu       sync.Mutex
	working  *Field
	tool     Tool
	stroking bool
	lastX    int
	lastY    int
}

func NewEditor() *Editor {
	return &Editor{tool: Tool{Value: Raise, Radius: 12}}
}

// Active reports whether an edit session is open.
func (e *Editor) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.working != nil
}

// Begin opens an edit session over a copy of seed. The seed is expected to
// be at the native resolution of the source image.
func (e *Editor) Begin(seed *Field) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.working != nil {
		return ErrActive
	}
	e.working = seed.Clone()
	e.stroking = false
	return nil
}

// SetTool changes the brush for subsequent strokes.
func (e *Editor) SetTool(t Tool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t.Radius < 1 {
		t.Radius = 1
	}
	e.tool = t
}

// Tool returns the current brush.
func (e *Editor) Tool() Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tool
}

// Working returns the live paint surface, or nil outside an edit session.
// The surface belongs to the editing goroutine until Commit or Discard;
// the conversion pipeline never reads it.
func (e *Editor) Working() *Field {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.working
}

// StartStroke begins a stroke at (x, y), stamping the brush once.
// Ignored outside an edit session.
func (e *Editor) StartStroke(x, y int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.working == nil {
		return
	}
	e.paintLocked(x, y, e.tool.Radius, e.tool.Value)
	e.stroking = true
	e.lastX, e.lastY = x, y
}

// MoveTo extends the current stroke to (x, y), stamping the brush along the
// segment from the previous point so fast pointer moves leave no gaps.
func (e *Editor) MoveTo(x, y int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.working == nil || !e.stroking {
		return
	}
	dx, dy := x-e.lastX, y-e.lastY
	steps := abs(dx)
	if abs(dy) > steps {
		steps = abs(dy)
	}
	for i := 1; i <= steps; i++ {
		e.paintLocked(e.lastX+dx*i/steps, e.lastY+dy*i/steps, e.tool.Radius, e.tool.Value)
	}
	e.lastX, e.lastY = x, y
}

// EndStroke closes the current stroke. Pointer-up and pointer-leave both
// map here.
func (e *Editor) EndStroke() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stroking = false
}

// Paint fills a circle of the given radius and depth value on the working
// field. Out-of-bounds parts of the circle are clipped.
func (e *Editor) Paint(cx, cy, radius int, value uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paintLocked(cx, cy, radius, value)
}

func (e *Editor) paintLocked(cx, cy, radius int, value uint8) {
	if e.working == nil {
		return
	}
	f := e.working
	for y := cy - radius; y <= cy+radius; y++ {
		if y < 0 || y >= f.H {
			continue
		}
		for x := cx - radius; x <= cx+radius; x++ {
			if x < 0 || x >= f.W {
				continue
			}
			ddx, ddy := x-cx, y-cy
			if ddx*ddx+ddy*ddy <= radius*radius {
				f.Pix[y*f.W+x] = value
			}
		}
	}
}

// Commit ends the session and returns the edited field, marked authored.
// The editor drops its reference; the caller owns the result.
func (e *Editor) Commit() (*Field, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.working == nil {
		return nil, ErrNoEdit
	}
	out := e.working
	out.Authored = true
	e.working = nil
	e.stroking = false
	return out, nil
}

// Discard ends the session and throws the edits away.
func (e *Editor) Discard() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.working = nil
	e.stroking = false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
