package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/tacticsboard/board/pkg/core"

	"github.com/charmbracelet/lipgloss"
)

// Terminal cell size in screen units.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

// CellCenter returns the screen point at the middle of terminal cell (col, row).
func CellCenter(col, row int) core.Point {
	return core.Point{X: (float64(col) + 0.5) * CellWidth, Y: (float64(row) + 0.5) * CellHeight}
}

type cell struct {
	r  rune
	fg string
	bg string
}

type affine struct {
	sx, sy, tx, ty float64
}

func (a affine) apply(x, y float64) core.Point {
	return core.Point{X: a.sx*x + a.tx, Y: a.sy*y + a.ty}
}

type subpath struct {
	points []core.Point
	closed bool

	circle bool
	center core.Point
	radius float64
}

// Cells is a Surface that rasterises onto a grid of terminal character
// cells. Fills paint cell backgrounds, strokes and text paint runes.
type Cells struct {
	cols, rows int
	grid       []cell

	m      affine
	stack  []affine
	color  string
	dashed bool
	path   []subpath
}

var _ Surface = (*Cells)(nil)

// NewCells creates a cols x rows terminal surface.
func NewCells(cols, rows int) *Cells {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c := &Cells{
		cols: cols,
		rows: rows,
		grid: make([]cell, cols*rows),
		m:    affine{sx: 1, sy: 1},
	}
	for i := range c.grid {
		c.grid[i].r = ' '
	}
	return c
}

// Size returns the grid dimensions.
func (c *Cells) Size() (cols, rows int) {
	return c.cols, c.rows
}

func (c *Cells) Clear() {
	for i := range c.grid {
		c.grid[i] = cell{r: ' ', bg: c.color}
	}
}

func (c *Cells) Push() {
	c.stack = append(c.stack, c.m)
}

func (c *Cells) Pop() {
	if len(c.stack) == 0 {
		return
	}
	c.m = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

// Scale applies in the current coordinate system, as gg does.
func (c *Cells) Scale(sx, sy float64) {
	c.m.sx *= sx
	c.m.sy *= sy
}

// Translate applies in the current (post-scale) coordinate system.
func (c *Cells) Translate(tx, ty float64) {
	c.m.tx += c.m.sx * tx
	c.m.ty += c.m.sy * ty
}

func (c *Cells) SetColor(col color.Color) {
	r, g, b, _ := col.RGBA()
	c.color = fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

func (c *Cells) SetLineWidth(float64) {}

func (c *Cells) SetDash(dashes ...float64) {
	c.dashed = len(dashes) > 0
}

func (c *Cells) MoveTo(x, y float64) {
	c.path = append(c.path, subpath{points: []core.Point{c.m.apply(x, y)}})
}

func (c *Cells) LineTo(x, y float64) {
	if len(c.path) == 0 || c.path[len(c.path)-1].circle {
		c.MoveTo(x, y)
		return
	}
	sp := &c.path[len(c.path)-1]
	sp.points = append(sp.points, c.m.apply(x, y))
}

func (c *Cells) ClosePath() {
	if len(c.path) > 0 {
		c.path[len(c.path)-1].closed = true
	}
}

func (c *Cells) DrawCircle(x, y, r float64) {
	c.path = append(c.path, subpath{
		circle: true,
		center: c.m.apply(x, y),
		radius: r * math.Abs(c.m.sx),
	})
}

func (c *Cells) DrawRectangle(x, y, w, h float64) {
	c.MoveTo(x, y)
	c.LineTo(x+w, y)
	c.LineTo(x+w, y+h)
	c.LineTo(x, y+h)
	c.ClosePath()
}

func (c *Cells) Stroke() {
	glyph := '•'
	if c.dashed {
		glyph = '·'
	}
	for _, sp := range c.path {
		if sp.circle {
			steps := int(2*math.Pi*sp.radius/CellWidth) + 8
			for i := 0; i < steps; i++ {
				a := 2 * math.Pi * float64(i) / float64(steps)
				c.plot(sp.center.X+sp.radius*math.Cos(a), sp.center.Y+sp.radius*math.Sin(a), glyph)
			}
			continue
		}
		pts := sp.points
		if sp.closed && len(pts) > 1 {
			pts = append(append([]core.Point{}, pts...), pts[0])
		}
		if len(pts) == 1 {
			c.plot(pts[0].X, pts[0].Y, glyph)
		}
		for i := 0; i+1 < len(pts); i++ {
			c.segment(pts[i], pts[i+1], glyph)
		}
	}
	c.path = nil
}

func (c *Cells) Fill() {
	for _, sp := range c.path {
		for row := 0; row < c.rows; row++ {
			for col := 0; col < c.cols; col++ {
				p := CellCenter(col, row)
				if (sp.circle && p.Distance(sp.center) <= sp.radius) ||
					(!sp.circle && insidePolygon(p, sp.points)) {
					c.grid[row*c.cols+col].bg = c.color
				}
			}
		}
	}
	c.path = nil
}

func (c *Cells) DrawStringAnchored(s string, x, y, ax, ay float64) {
	p := c.m.apply(x, y)
	runes := []rune(s)
	width := float64(len(runes)) * CellWidth
	col := int(math.Floor((p.X - ax*width) / CellWidth))
	row := int(math.Floor((p.Y + (ay-0.5)*CellHeight) / CellHeight))
	for i, r := range runes {
		c.setRune(col+i, row, r)
	}
}

// At returns the rune and colors of cell (col, row).
func (c *Cells) At(col, row int) (r rune, fg, bg string) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return 0, "", ""
	}
	cl := c.grid[row*c.cols+col]
	return cl.r, cl.fg, cl.bg
}

// Plain returns the grid runes without colors, one line per row.
func (c *Cells) Plain() string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			b.WriteRune(c.grid[row*c.cols+col].r)
		}
		if row < c.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// String renders the grid with lipgloss colors, batching runs of equally
// styled cells.
func (c *Cells) String() string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		start := 0
		for col := 1; col <= c.cols; col++ {
			cur := c.grid[row*c.cols+start]
			if col < c.cols {
				next := c.grid[row*c.cols+col]
				if next.fg == cur.fg && next.bg == cur.bg {
					continue
				}
			}
			var run strings.Builder
			for i := start; i < col; i++ {
				run.WriteRune(c.grid[row*c.cols+i].r)
			}
			style := lipgloss.NewStyle()
			if cur.fg != "" {
				style = style.Foreground(lipgloss.Color(cur.fg))
			}
			if cur.bg != "" {
				style = style.Background(lipgloss.Color(cur.bg))
			}
			b.WriteString(style.Render(run.String()))
			start = col
		}
		if row < c.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (c *Cells) segment(a, b core.Point, glyph rune) {
	dx, dy := b.X-a.X, b.Y-a.Y
	steps := int(math.Max(math.Abs(dx)/CellWidth, math.Abs(dy)/CellHeight)*2) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.plot(a.X+dx*t, a.Y+dy*t, glyph)
	}
}

func (c *Cells) plot(x, y float64, glyph rune) {
	c.setRune(int(math.Floor(x/CellWidth)), int(math.Floor(y/CellHeight)), glyph)
}

func (c *Cells) setRune(col, row int, r rune) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	cl := &c.grid[row*c.cols+col]
	cl.r = r
	cl.fg = c.color
}

// insidePolygon is the even-odd ray casting test.
func insidePolygon(p core.Point, poly []core.Point) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
		j = i
	}
	return inside
}
