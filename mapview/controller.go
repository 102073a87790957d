// Package mapview holds the map view controller: the viewport, the tile sets shown in it,
// its markers and controls, and the Gio widget drawing them.
package mapview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"gioui.org/f32"
	"github.com/olablt/gio-photomap/page"
	"github.com/olablt/gio-photomap/tiles"
	"github.com/olablt/gio-photomap/tiles/worker"
	"github.com/rs/zerolog"
)

const (
	DefaultZoom    = 10
	DefaultMinZoom = 2
	DefaultMaxZoom = 19
	DefaultPadding = 40

	// markerRadius is the hit and draw radius of a marker in pixels.
	markerRadius = 9
)

var (
	// DefaultCenter is Tokyo.
	DefaultCenter = tiles.LatLng{Lat: 35.6762, Lng: 139.6503}

	defaultSize = image.Pt(800, 600)
)

var (
	ErrNoContainer = errors.New("map container not found")
	ErrNoMarkers   = errors.New("no markers to fit")
	ErrEmptyBounds = errors.New("empty bounds")
)

type MapType int

const (
	Roadmap MapType = iota
	Satellite
)

func (t MapType) String() string {
	if t == Satellite {
		return "satellite"
	}
	return "roadmap"
}

// ControlPosition is the corner of the map a control is placed in.
type ControlPosition int

const (
	TopLeft ControlPosition = iota
	TopRight
	BottomLeft
	BottomRight
)

// Option configures a Controller.
type Option func(*Controller)

func WithCenter(ll tiles.LatLng) Option {
	return func(c *Controller) { c.center = ll }
}

func WithZoom(zoom int) Option {
	return func(c *Controller) { c.zoom = zoom }
}

func WithMinMaxZoom(minZoom, maxZoom int) Option {
	return func(c *Controller) {
		c.minZoom = minZoom
		c.maxZoom = maxZoom
	}
}

// WithPadding sets the margin in pixels kept around fitted bounds.
func WithPadding(px int) Option {
	return func(c *Controller) { c.padding = px }
}

// WithSize sets the viewport size used until the view is first laid out.
func WithSize(size image.Point) Option {
	return func(c *Controller) { c.size = size }
}

func WithTileManager(t MapType, tm *tiles.TileManager) Option {
	return func(c *Controller) { c.managers[t] = tm }
}

// WithPool runs searches on pool instead of plain goroutines.
func WithPool(pool *worker.Pool) Option {
	return func(c *Controller) { c.pool = pool }
}

// WithInvalidate sets the function asking the window for a new frame.
func WithInvalidate(fn func()) Option {
	return func(c *Controller) { c.invalidate = fn }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithContext sets the context background work is bound to.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) { c.ctx = ctx }
}

// Controller owns one map view. Except for Drain's queue, it must only be used from the UI goroutine.
type Controller struct {
	ctx        context.Context
	log        zerolog.Logger
	pool       *worker.Pool
	invalidate func()

	center  tiles.LatLng
	zoom    int
	minZoom int
	maxZoom int
	padding int
	size    image.Point
	mapType MapType

	managers map[MapType]*tiles.TileManager
	markers  []*Marker
	controls map[ControlPosition][]page.Element
	events   page.Feed[Event]
	posted   chan func()
}

// Initialize creates a controller mounted in the map container containerID of doc and adds
// the map type control to it.
func Initialize(doc *page.Document, containerID string, opts ...Option) (*Controller, error) {
	mc, err := doc.MapContainer(containerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoContainer, err)
	}

	c := &Controller{
		ctx:      context.Background(),
		log:      zerolog.Nop(),
		center:   DefaultCenter,
		zoom:     DefaultZoom,
		minZoom:  DefaultMinZoom,
		maxZoom:  DefaultMaxZoom,
		padding:  DefaultPadding,
		size:     defaultSize,
		managers: make(map[MapType]*tiles.TileManager),
		controls: make(map[ControlPosition][]page.Element),
		posted:   make(chan func(), 64),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "mapview").Str("container", containerID).Logger()
	if c.maxZoom < c.minZoom {
		c.minZoom, c.maxZoom = c.maxZoom, c.minZoom
	}
	c.zoom = c.clampZoom(c.zoom)
	c.center = normalize(c.center)

	for _, tm := range c.managers {
		tm.SetOnLoadCallback(c.redraw)
	}

	roadmap := page.NewButton(containerID+"-type-roadmap", "Map")
	satellite := page.NewButton(containerID+"-type-satellite", "Aerial")
	roadmap.Clicks.Subscribe(func(page.ClickEvent) { c.SetMapType(Roadmap) })
	satellite.Clicks.Subscribe(func(page.ClickEvent) { c.SetMapType(Satellite) })
	c.AddControl(TopLeft, roadmap)
	c.AddControl(TopLeft, satellite)

	mc.Bind(c)
	c.log.Debug().Float64("lat", c.center.Lat).Float64("lng", c.center.Lng).Int("zoom", c.zoom).Msg("map initialized")
	return c, nil
}

// Subscribe registers fn for the controller's events.
func (c *Controller) Subscribe(fn func(Event)) (unsubscribe func()) {
	return c.events.Subscribe(fn)
}

func (c *Controller) Center() tiles.LatLng { return c.center }

func (c *Controller) Zoom() int { return c.zoom }

func (c *Controller) Size() image.Point { return c.size }

func (c *Controller) MapType() MapType { return c.mapType }

// SetMapType switches the tile set shown.
func (c *Controller) SetMapType(t MapType) {
	if t == c.mapType {
		return
	}
	c.mapType = t
	c.log.Debug().Stringer("type", t).Msg("map type changed")
	c.events.Send(Event{Kind: MapTypeChanged, MapType: t})
	c.redraw()
}

// TileManager returns the manager of the current map type, or nil when none is configured.
func (c *Controller) TileManager() *tiles.TileManager {
	return c.managers[c.mapType]
}

// AddControl places el in the given corner, after the controls already there.
func (c *Controller) AddControl(pos ControlPosition, el page.Element) {
	c.controls[pos] = append(c.controls[pos], el)
}

func (c *Controller) Controls(pos ControlPosition) []page.Element {
	return append([]page.Element(nil), c.controls[pos]...)
}

// SetView moves the viewport to center and zoom.
func (c *Controller) SetView(center tiles.LatLng, zoom int) {
	center = normalize(center)
	zoom = c.clampZoom(zoom)
	if center == c.center && zoom == c.zoom {
		return
	}
	c.center = center
	c.zoom = zoom
	c.boundsChanged()
}

// SetSize updates the viewport size in pixels.
func (c *Controller) SetSize(size image.Point) {
	if size == c.size || size.X <= 0 || size.Y <= 0 {
		return
	}
	c.size = size
	c.boundsChanged()
}

// Bounds returns the area currently shown, cut at the antimeridian and the Mercator poles.
func (c *Controller) Bounds() tiles.Bounds {
	cx, cy := tiles.CalculateWorldCoordinates(c.center, c.zoom)
	hw, hh := float64(c.size.X)/2, float64(c.size.Y)/2
	return tiles.NewBounds(
		clampEdge(tiles.WorldToLatLng(cx-hw, cy+hh, c.zoom)),
		clampEdge(tiles.WorldToLatLng(cx+hw, cy-hh, c.zoom)),
	)
}

func clampEdge(ll tiles.LatLng) tiles.LatLng {
	ll.Lat = math.Max(-tiles.MaxLatitude, math.Min(tiles.MaxLatitude, ll.Lat))
	ll.Lng = math.Max(-180, math.Min(180, ll.Lng))
	return ll
}

// PanBy moves the center by dx, dy pixels.
func (c *Controller) PanBy(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	cx, cy := tiles.CalculateWorldCoordinates(c.center, c.zoom)
	c.SetView(tiles.WorldToLatLng(cx+dx, cy+dy, c.zoom), c.zoom)
}

// ZoomAt changes the zoom by delta keeping the point under p in place.
func (c *Controller) ZoomAt(p f32.Point, delta int) {
	oldZoom := c.zoom
	newZoom := c.clampZoom(oldZoom + delta)
	if newZoom == oldZoom {
		return
	}
	offX := float64(p.X) - float64(c.size.X)/2
	offY := float64(p.Y) - float64(c.size.Y)/2
	cx, cy := tiles.CalculateWorldCoordinates(c.center, oldZoom)

	factor := math.Pow(2, float64(newZoom-oldZoom))
	nx := (cx+offX)*factor - offX
	ny := (cy+offY)*factor - offY
	c.SetView(tiles.WorldToLatLng(nx, ny, newZoom), newZoom)
}

// ScreenPoint returns the position of ll in viewport pixels.
func (c *Controller) ScreenPoint(ll tiles.LatLng) f32.Point {
	cx, cy := tiles.CalculateWorldCoordinates(c.center, c.zoom)
	x, y := tiles.CalculateWorldCoordinates(ll, c.zoom)
	return f32.Pt(
		float32(x-cx+float64(c.size.X)/2),
		float32(y-cy+float64(c.size.Y)/2),
	)
}

// LatLngAt returns the position under the viewport pixel p.
func (c *Controller) LatLngAt(p f32.Point) tiles.LatLng {
	cx, cy := tiles.CalculateWorldCoordinates(c.center, c.zoom)
	return tiles.WorldToLatLng(
		cx+float64(p.X)-float64(c.size.X)/2,
		cy+float64(p.Y)-float64(c.size.Y)/2,
		c.zoom,
	)
}

// AddMarker adds a marker at pos. onClick may be nil.
func (c *Controller) AddMarker(pos tiles.LatLng, title string, onClick func(*Marker)) *Marker {
	m := &Marker{position: pos, title: title, attached: true}
	m.OnClick(func(m *Marker) {
		c.events.Send(Event{Kind: MarkerClicked, Marker: m})
	})
	if onClick != nil {
		m.OnClick(onClick)
	}
	c.markers = append(c.markers, m)
	c.redraw()
	return m
}

// Markers returns the markers on the map in the order they were added.
func (c *Controller) Markers() []*Marker {
	return append([]*Marker(nil), c.markers...)
}

// ClearMarkers removes every marker from the map.
func (c *Controller) ClearMarkers() {
	for _, m := range c.markers {
		m.detach()
	}
	c.markers = nil
	c.redraw()
}

// MarkerAt returns the topmost marker drawn under p, or nil.
func (c *Controller) MarkerAt(p f32.Point) *Marker {
	for i := len(c.markers) - 1; i >= 0; i-- {
		m := c.markers[i]
		d := c.ScreenPoint(m.position).Sub(p)
		if d.X*d.X+d.Y*d.Y <= markerRadius*markerRadius {
			return m
		}
	}
	return nil
}

// Drain runs the work posted from background goroutines. The frame loop calls it before layout.
func (c *Controller) Drain() {
	for {
		select {
		case fn := <-c.posted:
			fn()
		default:
			return
		}
	}
}

// post queues fn to run on the UI goroutine at the next Drain.
func (c *Controller) post(fn func()) {
	select {
	case c.posted <- fn:
	default:
		go func() {
			select {
			case c.posted <- fn:
			case <-c.ctx.Done():
			}
		}()
	}
	c.redraw()
}

// run executes work off the UI goroutine.
func (c *Controller) run(name string, work func(ctx context.Context) error) {
	if c.pool != nil && c.pool.Submit(worker.Task{Ctx: c.ctx, Name: name, Work: work}) {
		return
	}
	go func() {
		if err := work(c.ctx); err != nil {
			c.log.Debug().Err(err).Str("task", name).Msg("task failed")
		}
	}()
}

func (c *Controller) boundsChanged() {
	c.events.Send(Event{Kind: BoundsChanged, Bounds: c.Bounds()})
	c.redraw()
}

func (c *Controller) redraw() {
	if c.invalidate != nil {
		c.invalidate()
	}
}

func (c *Controller) clampZoom(z int) int {
	return max(c.minZoom, min(z, c.maxZoom))
}

// normalize clamps the latitude to the Mercator range and wraps the longitude into [-180, 180).
func normalize(ll tiles.LatLng) tiles.LatLng {
	ll.Lat = math.Max(-tiles.MaxLatitude, math.Min(tiles.MaxLatitude, ll.Lat))
	if ll.Lng < -180 || ll.Lng >= 180 {
		ll.Lng = math.Mod(ll.Lng+180, 360)
		if ll.Lng < 0 {
			ll.Lng += 360
		}
		ll.Lng -= 180
	}
	return ll
}
