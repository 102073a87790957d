package ui

import (
	"errors"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"github.com/olablt/gio-photomap/gallery"
	"github.com/olablt/gio-photomap/mapview"
	"github.com/olablt/gio-photomap/page"
	"github.com/olablt/gio-photomap/tiles"
	"github.com/rs/zerolog"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

var (
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	panel = color.NRGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff}
)

// Window shows a booted page: the map with its controls on the left, the image picker,
// preview and gallery on the right.
type Window struct {
	win    *app.Window
	page   *Page
	log    zerolog.Logger
	th     *material.Theme
	view   *mapview.View
	loader *gallery.Loader
	expl   *explorer.Explorer
	images *tiles.ImageOpCache

	editor      widget.Editor
	buttons     map[string]*widget.Clickable
	choose      widget.Clickable
	galleryList widget.List
	selected    chan page.File
}

func NewWindow(win *app.Window, p *Page, loader *gallery.Loader, log zerolog.Logger) *Window {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))

	w := &Window{
		win:      win,
		page:     p,
		log:      log.With().Str("component", "window").Logger(),
		th:       th,
		loader:   loader,
		expl:     explorer.NewExplorer(win),
		images:   tiles.NewImageOpCache(),
		editor:   widget.Editor{SingleLine: true, Submit: true},
		buttons:  make(map[string]*widget.Clickable),
		selected: make(chan page.File, 1),
	}
	w.galleryList.Axis = layout.Vertical
	if p.Map != nil {
		w.view = mapview.NewView(p.Map)
	}
	if loader != nil {
		loader.SetOnLoadCallback(win.Invalidate)
	}
	return w
}

// Run processes window events until the window is closed.
func (w *Window) Run() error {
	var ops op.Ops
	for {
		e := w.win.Event()
		w.expl.ListenEvents(e)
		switch e := e.(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			w.Layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (w *Window) Layout(gtx C) D {
	w.drainSelected()
	return layout.Flex{}.Layout(gtx,
		layout.Flexed(0.7, w.layoutMap),
		layout.Flexed(0.3, w.layoutSide),
	)
}

func (w *Window) layoutMap(gtx C) D {
	if w.view == nil {
		return layout.Center.Layout(gtx, material.Body1(w.th, "No map").Layout)
	}
	controls := w.page.Map.Controls(mapview.TopLeft)
	return layout.Stack{Alignment: layout.NW}.Layout(gtx,
		layout.Expanded(w.view.Layout),
		layout.Stacked(func(gtx C) D {
			children := make([]layout.FlexChild, 0, len(controls))
			for _, el := range controls {
				el := el
				children = append(children, layout.Rigid(func(gtx C) D {
					return layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx C) D {
						return w.layoutControl(gtx, el)
					})
				}))
			}
			return layout.UniformInset(unit.Dp(4)).Layout(gtx, func(gtx C) D {
				return layout.Flex{Alignment: layout.Middle}.Layout(gtx, children...)
			})
		}),
	)
}

func (w *Window) layoutControl(gtx C, el page.Element) D {
	switch el := el.(type) {
	case *page.Button:
		clk := w.button(el.ID())
		for clk.Clicked(gtx) {
			el.Click()
		}
		return material.Button(w.th, clk, el.Label).Layout(gtx)
	case *page.TextInput:
		for {
			ev, ok := w.editor.Update(gtx)
			if !ok {
				break
			}
			if _, ok := ev.(widget.SubmitEvent); ok {
				el.SetValue(w.editor.Text())
				el.Submit()
			}
		}
		gtx.Constraints.Min.X = gtx.Dp(280)
		gtx.Constraints.Max.X = gtx.Constraints.Min.X
		return layout.Background{}.Layout(gtx, fill(white), func(gtx C) D {
			return layout.UniformInset(unit.Dp(8)).Layout(gtx, material.Editor(w.th, &w.editor, el.Placeholder).Layout)
		})
	}
	return D{}
}

func (w *Window) layoutSide(gtx C) D {
	return layout.Background{}.Layout(gtx, fill(panel), func(gtx C) D {
		return layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx C) D {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(w.layoutChooser),
				layout.Rigid(w.layoutPreview),
				layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
				layout.Flexed(1, w.layoutGallery),
			)
		})
	})
}

func (w *Window) layoutChooser(gtx C) D {
	input, err := w.page.Doc.FileInput(page.ImageInputID)
	if err != nil {
		return D{}
	}
	if w.choose.Clicked(gtx) {
		go w.chooseFile(input.Accept)
	}
	return material.Button(w.th, &w.choose, "Choose image").Layout(gtx)
}

func (w *Window) layoutPreview(gtx C) D {
	c, err := w.page.Doc.Container(page.PreviewID)
	if err != nil {
		return D{}
	}
	children := c.Children()
	if len(children) == 0 {
		return D{}
	}
	gtx.Constraints.Max.Y = min(gtx.Constraints.Max.Y, gtx.Dp(220))
	return layout.Inset{Top: unit.Dp(8)}.Layout(gtx, func(gtx C) D {
		return w.layoutNode(gtx, children[0])
	})
}

func (w *Window) layoutGallery(gtx C) D {
	c, err := w.page.Doc.Container(page.GalleryID)
	if err != nil {
		return D{}
	}
	children := c.Children()
	if len(children) == 0 {
		return material.Caption(w.th, "Click a marker to see its photos").Layout(gtx)
	}
	return material.List(w.th, &w.galleryList).Layout(gtx, len(children), func(gtx C, i int) D {
		return layout.Inset{Bottom: unit.Dp(12)}.Layout(gtx, func(gtx C) D {
			return w.layoutNode(gtx, children[i])
		})
	})
}

// layoutNode draws a content node and its children top to bottom.
func (w *Window) layoutNode(gtx C, n page.Node) D {
	switch n := n.(type) {
	case *page.Block:
		children := make([]layout.FlexChild, 0, len(n.Children))
		for _, child := range n.Children {
			child := child
			children = append(children, layout.Rigid(func(gtx C) D {
				return w.layoutNode(gtx, child)
			}))
		}
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
	case *page.Image:
		return w.layoutImage(gtx, n)
	case *page.Text:
		switch n.Tag {
		case "p":
			return material.Body1(w.th, n.Value).Layout(gtx)
		case "small":
			return material.Caption(w.th, n.Value).Layout(gtx)
		}
		return material.Body2(w.th, n.Value).Layout(gtx)
	}
	return D{}
}

func (w *Window) layoutImage(gtx C, n *page.Image) D {
	img := n.Decoded
	key := n.Src
	inline := strings.HasPrefix(n.Src, "data:")
	if inline {
		key = "inline:" + n.Class
	}
	if img == nil && !inline && w.loader != nil {
		w.loader.Request(w.page.deps.Ctx, n.Src)
		img, _ = w.loader.Peek(n.Src)
	}
	if img == nil {
		return material.Caption(w.th, n.Alt).Layout(gtx)
	}
	gtx.Constraints.Max.Y = min(gtx.Constraints.Max.Y, gtx.Dp(180))
	return widget.Image{
		Src:      w.images.Op(key, img),
		Fit:      widget.Contain,
		Position: layout.W,
	}.Layout(gtx)
}

func (w *Window) button(id string) *widget.Clickable {
	clk, ok := w.buttons[id]
	if !ok {
		clk = new(widget.Clickable)
		w.buttons[id] = clk
	}
	return clk
}

func (w *Window) chooseFile(exts []string) {
	rc, err := w.expl.ChooseFile(exts...)
	if err != nil {
		if !errors.Is(err, explorer.ErrUserDecline) {
			w.log.Error().Err(err).Msg("choosing file")
		}
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		w.log.Error().Err(err).Msg("reading chosen file")
		return
	}
	name := "image"
	if f, ok := rc.(interface{ Name() string }); ok {
		name = filepath.Base(f.Name())
	}
	w.selected <- page.FileFromBytes(name, data)
	w.win.Invalidate()
}

// drainSelected hands chosen files to the image input on the UI goroutine.
func (w *Window) drainSelected() {
	for {
		select {
		case f := <-w.selected:
			if input, err := w.page.Doc.FileInput(page.ImageInputID); err == nil {
				input.Select(f)
			}
		default:
			return
		}
	}
}

func fill(c color.NRGBA) layout.Widget {
	return func(gtx C) D {
		size := gtx.Constraints.Min
		paint.FillShape(gtx.Ops, c, clip.Rect{Max: size}.Op())
		return D{Size: image.Pt(size.X, size.Y)}
	}
}
