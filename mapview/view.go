package mapview

import (
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"github.com/olablt/gio-photomap/tiles"
)

// clickSlop is how far in pixels the pointer may move between press and release of a click.
const clickSlop = 4

var (
	markerFill    = color.NRGBA{R: 0xea, G: 0x43, B: 0x35, A: 0xff}
	markerOutline = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	background    = color.NRGBA{R: 0xe5, G: 0xe3, B: 0xdf, A: 0xff}
)

// View draws a controller's map and turns pointer input into pans, zooms and marker clicks.
type View struct {
	Controller *Controller

	ops *tiles.ImageOpCache

	pressPos f32.Point
	lastPos  f32.Point
	pressed  bool
	moved    bool
}

func NewView(c *Controller) *View {
	return &View{Controller: c, ops: tiles.NewImageOpCache()}
}

func (v *View) Layout(gtx layout.Context) layout.Dimensions {
	c := v.Controller
	c.Drain()
	c.SetSize(gtx.Constraints.Max)

	tag := v
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  tag,
			Kinds:   pointer.Scroll | pointer.Drag | pointer.Press | pointer.Release | pointer.Cancel,
			ScrollY: pointer.ScrollRange{Min: -10, Max: 10},
		})
		if !ok {
			break
		}
		x, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch x.Kind {
		case pointer.Press:
			v.pressed = true
			v.moved = false
			v.pressPos = x.Position
			v.lastPos = x.Position
		case pointer.Drag:
			if !v.pressed {
				break
			}
			d := x.Position.Sub(v.lastPos)
			c.PanBy(-float64(d.X), -float64(d.Y))
			v.lastPos = x.Position
			if m := x.Position.Sub(v.pressPos); m.X*m.X+m.Y*m.Y > clickSlop*clickSlop {
				v.moved = true
			}
		case pointer.Release:
			if v.pressed && !v.moved {
				if m := c.MarkerAt(x.Position); m != nil {
					m.Click()
				}
			}
			v.pressed = false
		case pointer.Cancel:
			v.pressed = false
		case pointer.Scroll:
			switch {
			case x.Scroll.Y < 0:
				c.ZoomAt(x.Position, 1)
			case x.Scroll.Y > 0:
				c.ZoomAt(x.Position, -1)
			}
		}
	}

	size := c.Size()
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, tag)
	paint.FillShape(gtx.Ops, background, clip.Rect{Max: size}.Op())

	v.drawTiles(gtx)
	v.drawMarkers(gtx)

	return layout.Dimensions{Size: size}
}

func (v *View) drawTiles(gtx layout.Context) {
	c := v.Controller
	tm := c.TileManager()
	if tm == nil {
		return
	}
	visible := tiles.CalculateVisibleTiles(c.Center(), c.Zoom(), c.Size())
	tm.Request(c.ctx, visible)

	centerX, centerY := tiles.CalculateWorldCoordinates(c.Center(), c.Zoom())
	halfX, halfY := c.Size().X/2, c.Size().Y/2
	for _, tile := range visible {
		img, ok := tm.Peek(tile)
		if !ok {
			continue
		}
		x := halfX + int(float64(tile.X*tiles.TileSize)-centerX)
		y := halfY + int(float64(tile.Y*tiles.TileSize)-centerY)

		t := op.Offset(image.Pt(x, y)).Push(gtx.Ops)
		v.ops.Op(tm.Name()+"/"+tiles.GetTileKey(tile), img).Add(gtx.Ops)
		paint.PaintOp{}.Add(gtx.Ops)
		t.Pop()
	}
}

func (v *View) drawMarkers(gtx layout.Context) {
	c := v.Controller
	for _, m := range c.markers {
		p := c.ScreenPoint(m.position).Round()
		outer := image.Rect(p.X-markerRadius, p.Y-markerRadius, p.X+markerRadius, p.Y+markerRadius)
		inner := outer.Inset(2)
		paint.FillShape(gtx.Ops, markerOutline, clip.Ellipse(outer).Op(gtx.Ops))
		paint.FillShape(gtx.Ops, markerFill, clip.Ellipse(inner).Op(gtx.Ops))
	}
}
