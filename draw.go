package livemap

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/paulmach/orb/maptile"
	"golang.org/x/image/font/basicfont"

	"github.com/phanxgames/livemap/geom"
	"github.com/phanxgames/livemap/layers"
	"github.com/phanxgames/livemap/style"
)

var (
	whiteImage    *ebiten.Image
	whiteSubImage *ebiten.Image
)

// ensureWhite returns a lazily created white source image for vector
// triangles.
func ensureWhite() *ebiten.Image {
	if whiteSubImage == nil {
		whiteImage = ebiten.NewImage(3, 3)
		whiteImage.Fill(color.White)
		whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteSubImage
}

var labelFace = text.NewGoXFace(basicfont.Face7x13)

// renderer submits a Scene to an ebiten image. It keeps GPU copies of the
// tiles drawn in the previous frame.
type renderer struct {
	tiles     map[maptile.Tile]tileImage
	frameUsed map[maptile.Tile]bool

	vs []ebiten.Vertex
	is []uint16

	drawCalls int
}

type tileImage struct {
	src image.Image
	img *ebiten.Image
}

func newRenderer() *renderer {
	return &renderer{
		tiles:     map[maptile.Tile]tileImage{},
		frameUsed: map[maptile.Tile]bool{},
	}
}

func (r *renderer) draw(dst *ebiten.Image, sc *Scene) {
	r.drawCalls = 0
	clear(r.frameUsed)
	dst.Fill(sc.Background.RGBA())

	for i := range sc.Commands {
		cmd := &sc.Commands[i]
		switch cmd.Type {
		case CommandTile:
			r.drawTile(dst, cmd)
		case CommandCircle:
			r.drawSymbol(dst, cmd)
		case CommandPath:
			r.drawPath(dst, cmd)
		case CommandPolygon:
			r.drawPolygon(dst, cmd)
		case CommandText:
			r.drawText(dst, cmd)
		case CommandPie:
			r.drawPie(dst, cmd)
		case CommandBar:
			r.drawBar(dst, cmd)
		}
	}

	for key, t := range r.tiles {
		if !r.frameUsed[key] {
			t.img.Deallocate()
			delete(r.tiles, key)
		}
	}
}

func (r *renderer) dispose() {
	for key, t := range r.tiles {
		t.img.Deallocate()
		delete(r.tiles, key)
	}
}

func (r *renderer) drawTile(dst *ebiten.Image, cmd *DrawCommand) {
	t, ok := r.tiles[cmd.Tile]
	if !ok || t.src != cmd.Image {
		if ok {
			t.img.Deallocate()
		}
		t = tileImage{src: cmd.Image, img: ebiten.NewImageFromImage(cmd.Image)}
		r.tiles[cmd.Tile] = t
	}
	r.frameUsed[cmd.Tile] = true

	b := t.img.Bounds()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(cmd.Rect.Dimension.X/float64(b.Dx()), cmd.Rect.Dimension.Y/float64(b.Dy()))
	op.GeoM.Translate(cmd.Rect.Left(), cmd.Rect.Top())
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(t.img, op)
	r.drawCalls++
}

// Point shapes follow the usual plotting codes: 0, 15 and 22 are squares,
// 2, 17 and 24 triangles, everything else a circle. Codes below 15 are
// outlines and 21 and above have a separate fill.
func (r *renderer) drawSymbol(dst *ebiten.Image, cmd *DrawCommand) {
	var p vector.Path
	c, rad := cmd.Center, float32(cmd.Radius)
	x, y := float32(c.X), float32(c.Y)
	switch cmd.Shape {
	case 0, 15, 22:
		p.MoveTo(x-rad, y-rad)
		p.LineTo(x+rad, y-rad)
		p.LineTo(x+rad, y+rad)
		p.LineTo(x-rad, y+rad)
		p.Close()
	case 2, 17, 24:
		h := rad * float32(math.Sqrt(3)) / 2
		p.MoveTo(x, y-rad)
		p.LineTo(x+h, y+rad/2)
		p.LineTo(x-h, y+rad/2)
		p.Close()
	default:
		p.Arc(x, y, rad, 0, 2*math.Pi, vector.Clockwise)
		p.Close()
	}

	switch {
	case cmd.Shape < 15:
		r.stroke(dst, &p, cmd.Stroke, cmd.StrokeWidth)
	case cmd.Shape < 21:
		r.fill(dst, &p, cmd.Stroke)
	default:
		r.fill(dst, &p, cmd.Fill)
		r.stroke(dst, &p, cmd.Stroke, cmd.StrokeWidth)
	}
}

func (r *renderer) drawPath(dst *ebiten.Image, cmd *DrawCommand) {
	for _, line := range cmd.Lines {
		for _, part := range dashLine(line, cmd.LineDash, cmd.StrokeWidth) {
			if len(part) < 2 {
				continue
			}
			var p vector.Path
			p.MoveTo(float32(part[0].X), float32(part[0].Y))
			for _, pt := range part[1:] {
				p.LineTo(float32(pt.X), float32(pt.Y))
			}
			r.stroke(dst, &p, cmd.Stroke, cmd.StrokeWidth)
		}
	}
}

func (r *renderer) drawPolygon(dst *ebiten.Image, cmd *DrawCommand) {
	for _, rings := range cmd.Rings {
		var p vector.Path
		for _, ring := range rings {
			if len(ring) < 3 {
				continue
			}
			p.MoveTo(float32(ring[0].X), float32(ring[0].Y))
			for _, pt := range ring[1:] {
				p.LineTo(float32(pt.X), float32(pt.Y))
			}
			p.Close()
		}
		r.fill(dst, &p, cmd.Fill)
		if cmd.StrokeWidth > 0 {
			r.stroke(dst, &p, cmd.Stroke, cmd.StrokeWidth)
		}
	}
}

func (r *renderer) drawPie(dst *ebiten.Image, cmd *DrawCommand) {
	total := 0.0
	for _, v := range cmd.Values {
		total += math.Abs(v)
	}
	if total == 0 {
		return
	}
	x, y, rad := float32(cmd.Center.X), float32(cmd.Center.Y), float32(cmd.Radius)
	start := -math.Pi / 2
	for i, v := range cmd.Values {
		end := start + math.Abs(v)/total*2*math.Pi
		var p vector.Path
		p.MoveTo(x, y)
		p.Arc(x, y, rad, float32(start), float32(end), vector.Clockwise)
		p.Close()
		r.fill(dst, &p, colorAt(cmd.Colors, i, cmd.Fill))
		start = end
	}
	if cmd.StrokeWidth > 0 {
		var p vector.Path
		p.Arc(x, y, rad, 0, 2*math.Pi, vector.Clockwise)
		p.Close()
		r.stroke(dst, &p, cmd.Stroke, cmd.StrokeWidth)
	}
}

func (r *renderer) drawBar(dst *ebiten.Image, cmd *DrawCommand) {
	n := len(cmd.Values)
	if n == 0 {
		return
	}
	maxAbs := 0.0
	for _, v := range cmd.Values {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}
	if maxAbs == 0 {
		return
	}
	w := cmd.Rect.Dimension.X / float64(n)
	full := 2 * cmd.Radius
	for i, v := range cmd.Values {
		h := math.Abs(v) / maxAbs * full
		x := cmd.Rect.Left() + float64(i)*w
		top := cmd.Center.Y - h
		if v < 0 {
			top = cmd.Center.Y
		}
		var p vector.Path
		p.MoveTo(float32(x), float32(top))
		p.LineTo(float32(x+w), float32(top))
		p.LineTo(float32(x+w), float32(top+h))
		p.LineTo(float32(x), float32(top+h))
		p.Close()
		r.fill(dst, &p, colorAt(cmd.Colors, i, cmd.Fill))
		if cmd.StrokeWidth > 0 {
			r.stroke(dst, &p, cmd.Stroke, cmd.StrokeWidth)
		}
	}
}

func (r *renderer) drawText(dst *ebiten.Image, cmd *DrawCommand) {
	ts := cmd.Text
	if ts == nil || len(ts.Lines) == 0 {
		return
	}
	k := ts.FontSize / float64(basicfont.Face7x13.Height)
	rect := ts.Rect
	ink := cmd.Fill
	if ink.A == 0 {
		ink = cmd.Stroke
	}

	// place maps a point of the unrotated label to the screen.
	place := func(x, y float64) (float32, float32) {
		v := geom.V[geom.Client](x, y).Rotate(ts.Angle).Add(cmd.Center)
		return float32(v.X), float32(v.Y)
	}
	if ts.DrawBorder {
		var p vector.Path
		p.MoveTo(place(rect.Left(), rect.Top()))
		p.LineTo(place(rect.Right(), rect.Top()))
		p.LineTo(place(rect.Right(), rect.Bottom()))
		p.LineTo(place(rect.Left(), rect.Bottom()))
		p.Close()
		r.fill(dst, &p, style.ColorWhite)
		r.stroke(dst, &p, ink, math.Max(ts.LabelSize, 1))
	}

	op := &text.DrawOptions{}
	var ax float64
	switch ts.Align {
	case layers.AlignStart:
		op.PrimaryAlign = text.AlignStart
		ax = rect.Left() + ts.Padding
	case layers.AlignEnd:
		op.PrimaryAlign = text.AlignEnd
		ax = rect.Right() - ts.Padding
	default:
		op.PrimaryAlign = text.AlignCenter
		ax = rect.Center().X
	}
	op.ColorScale.ScaleWithColor(ink.RGBA())

	for i, line := range ts.Lines {
		op.GeoM.Reset()
		op.GeoM.Scale(k, k)
		op.GeoM.Translate(ax, rect.Top()+ts.Padding+float64(i)*ts.LineHeight)
		op.GeoM.Rotate(ts.Angle)
		op.GeoM.Translate(cmd.Center.X, cmd.Center.Y)
		text.Draw(dst, line, labelFace, op)
		r.drawCalls++
	}
}

func (r *renderer) fill(dst *ebiten.Image, p *vector.Path, c style.Color) {
	if c.A == 0 {
		return
	}
	r.vs, r.is = p.AppendVerticesAndIndicesForFilling(r.vs[:0], r.is[:0])
	r.submit(dst, c, ebiten.FillRuleEvenOdd)
}

func (r *renderer) stroke(dst *ebiten.Image, p *vector.Path, c style.Color, width float64) {
	if c.A == 0 || width <= 0 {
		return
	}
	r.vs, r.is = p.AppendVerticesAndIndicesForStroke(r.vs[:0], r.is[:0], &vector.StrokeOptions{
		Width:    float32(width),
		LineJoin: vector.LineJoinRound,
		LineCap:  vector.LineCapRound,
	})
	r.submit(dst, c, ebiten.FillRuleFillAll)
}

func (r *renderer) submit(dst *ebiten.Image, c style.Color, rule ebiten.FillRule) {
	if len(r.is) == 0 {
		return
	}
	cr, cg, cb, ca := float32(c.R*c.A), float32(c.G*c.A), float32(c.B*c.A), float32(c.A)
	for i := range r.vs {
		r.vs[i].SrcX, r.vs[i].SrcY = 1, 1
		r.vs[i].ColorR, r.vs[i].ColorG, r.vs[i].ColorB, r.vs[i].ColorA = cr, cg, cb, ca
	}
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true, FillRule: rule}
	dst.DrawTriangles(r.vs, r.is, ensureWhite(), op)
	r.drawCalls++
}

func colorAt(colors []style.Color, i int, fallback style.Color) style.Color {
	if i < len(colors) {
		return colors[i]
	}
	return fallback
}

// dashLine splits a polyline into the "on" runs of a dash pattern given in
// multiples of the stroke width. An empty pattern returns the line whole.
func dashLine(line []geom.Vec[geom.Client], pattern []float64, width float64) [][]geom.Vec[geom.Client] {
	if len(pattern) == 0 || len(line) < 2 {
		return [][]geom.Vec[geom.Client]{line}
	}
	unit := math.Max(width, 1)
	dashes := make([]float64, len(pattern))
	total := 0.0
	for i, d := range pattern {
		dashes[i] = math.Max(d*unit, 0)
		total += dashes[i]
	}
	if total == 0 {
		return [][]geom.Vec[geom.Client]{line}
	}

	var out [][]geom.Vec[geom.Client]
	idx, left, on := 0, dashes[0], true
	cur := []geom.Vec[geom.Client]{line[0]}
	for i := 1; i < len(line); i++ {
		a, b := line[i-1], line[i]
		seg := b.Sub(a)
		segLen := seg.Length()
		pos := 0.0
		for segLen-pos > left {
			pos += left
			pt := a.Add(seg.Scale(pos / segLen))
			if on {
				cur = append(cur, pt)
				out = append(out, cur)
				cur = nil
			} else {
				cur = []geom.Vec[geom.Client]{pt}
			}
			on = !on
			idx = (idx + 1) % len(dashes)
			left = dashes[idx]
		}
		left -= segLen - pos
		if on {
			cur = append(cur, b)
		}
	}
	if on && len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}
