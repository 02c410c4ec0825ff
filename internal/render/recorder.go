package render

import (
	"fmt"
	"image/color"
)

// Call is one recorded drawing operation.
type Call struct {
	Op    string
	Args  []float64
	Text  string
	Color color.RGBA
}

func (c Call) String() string {
	if c.Text != "" {
		return fmt.Sprintf("%s(%q %v)", c.Op, c.Text, c.Args)
	}
	return fmt.Sprintf("%s%v", c.Op, c.Args)
}

// Recorder is a Surface that records every call instead of drawing. Stroke,
// Fill and DrawStringAnchored carry the color current at the time of the call.
type Recorder struct {
	Calls []Call

	color    color.RGBA
	depth    int
	maxDepth int
}

var _ Surface = (*Recorder)(nil)

// NewRecorder returns an empty recording surface.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(op string, args ...float64) {
	r.Calls = append(r.Calls, Call{Op: op, Args: args, Color: r.color})
}

func (r *Recorder) Clear() { r.add("Clear") }

func (r *Recorder) Push() {
	r.depth++
	if r.depth > r.maxDepth {
		r.maxDepth = r.depth
	}
	r.add("Push")
}

func (r *Recorder) Pop() {
	r.depth--
	r.add("Pop")
}

func (r *Recorder) Scale(sx, sy float64)     { r.add("Scale", sx, sy) }
func (r *Recorder) Translate(tx, ty float64) { r.add("Translate", tx, ty) }

func (r *Recorder) SetColor(c color.Color) {
	r.color = color.RGBAModel.Convert(c).(color.RGBA)
	r.add("SetColor")
}

func (r *Recorder) SetLineWidth(w float64)       { r.add("SetLineWidth", w) }
func (r *Recorder) SetDash(dashes ...float64)    { r.add("SetDash", dashes...) }
func (r *Recorder) MoveTo(x, y float64)          { r.add("MoveTo", x, y) }
func (r *Recorder) LineTo(x, y float64)          { r.add("LineTo", x, y) }
func (r *Recorder) ClosePath()                   { r.add("ClosePath") }
func (r *Recorder) Stroke()                      { r.add("Stroke") }
func (r *Recorder) Fill()                        { r.add("Fill") }
func (r *Recorder) DrawCircle(x, y, rad float64) { r.add("DrawCircle", x, y, rad) }

func (r *Recorder) DrawRectangle(x, y, w, h float64) {
	r.add("DrawRectangle", x, y, w, h)
}

func (r *Recorder) DrawStringAnchored(s string, x, y, ax, ay float64) {
	r.Calls = append(r.Calls, Call{Op: "DrawStringAnchored", Args: []float64{x, y, ax, ay}, Text: s, Color: r.color})
}

// Depth is the current Push/Pop nesting.
func (r *Recorder) Depth() int { return r.depth }

// MaxDepth is the deepest Push nesting seen.
func (r *Recorder) MaxDepth() int { return r.maxDepth }

// Ops lists the operation names in call order.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Index returns the position of the first call matching op and, when text
// is non-empty, the drawn string. It returns -1 when there is none.
func (r *Recorder) Index(op, text string) int {
	for i, c := range r.Calls {
		if c.Op == op && (text == "" || c.Text == text) {
			return i
		}
	}
	return -1
}

// Reset drops all recorded calls.
func (r *Recorder) Reset() {
	r.Calls = nil
	r.depth = 0
	r.maxDepth = 0
}
