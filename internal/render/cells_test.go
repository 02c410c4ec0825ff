package render

import (
	"image/color"
	"strings"
	"testing"

	"github.com/tacticsboard/board/internal/geo"
	"github.com/tacticsboard/board/pkg/core"

	"github.com/stretchr/testify/assert"
)

func TestCells_TransformMatchesGG(t *testing.T) {
	c := NewCells(10, 4)
	c.SetColor(color.White)
	c.Push()
	c.Scale(2, 2)
	c.Translate(4, 8)
	c.MoveTo(0, 0)
	c.Stroke()
	c.Pop()

	// (0,0) -> scale 2 -> translate in scaled space -> (8,16)
	r, fg, _ := c.At(1, 1)
	assert.Equal(t, '•', r)
	assert.Equal(t, "#ffffff", fg)
}

func TestCells_PopRestores(t *testing.T) {
	c := NewCells(10, 4)
	c.Push()
	c.Translate(80, 0)
	c.Pop()
	c.Pop() // extra pops are ignored
	c.MoveTo(0, 0)
	c.Stroke()

	r, _, _ := c.At(0, 0)
	assert.Equal(t, '•', r)
}

func TestCells_RenderMarker(t *testing.T) {
	c := NewCells(40, 8)
	f := Frame{Markers: []core.Marker{
		{ID: 1, Position: core.Pt(100, 56), Color: core.Palette[0], Label: "C1", Shape: core.ShapeCircle},
	}}
	Render(c, f, geo.DefaultView())

	r, fg, bg := c.At(11, 3)
	assert.Equal(t, 'C', r)
	assert.Equal(t, "#ffffff", fg)
	assert.Equal(t, "#e53935", bg)

	r, _, bg = c.At(12, 3)
	assert.Equal(t, '1', r)
	assert.Equal(t, "#e53935", bg)
}

func TestCells_DashedStroke(t *testing.T) {
	c := NewCells(20, 2)
	c.SetDash(6, 4)
	c.MoveTo(0, 8)
	c.LineTo(100, 8)
	c.Stroke()

	assert.Equal(t, strings.Repeat("·", 13)+strings.Repeat(" ", 7), strings.Split(c.Plain(), "\n")[0])
}

func TestCells_FillPolygon(t *testing.T) {
	c := NewCells(10, 10)
	c.SetColor(color.Black)
	c.DrawRectangle(16, 32, 32, 64)
	c.Fill()

	_, _, inside := c.At(3, 3)
	_, _, outside := c.At(0, 0)
	assert.Equal(t, "#000000", inside)
	assert.Empty(t, outside)
}

func TestCells_OutOfBoundsIgnored(t *testing.T) {
	c := NewCells(4, 2)
	c.DrawStringAnchored("far away", -500, -500, 0, 0)
	c.MoveTo(-100, -100)
	c.LineTo(1000, 1000)
	c.Stroke()
	r, _, _ := c.At(99, 99)
	assert.Equal(t, rune(0), r)
	assert.NotEmpty(t, c.String())
}

func TestCellCenter(t *testing.T) {
	assert.Equal(t, core.Pt(4, 8), CellCenter(0, 0))
	assert.Equal(t, core.Pt(100, 56), CellCenter(12, 3))
}
