// Package page models the named elements a view is built from: containers, inputs and
// buttons looked up by ID, plus the content nodes placed inside containers.
package page

import (
	"errors"
	"fmt"
	"sync"
)

// Default element IDs of the map page.
const (
	MapID         = "map"
	SearchInputID = "pac-input"
	ImageInputID  = "id_image"
	PreviewID     = "image-preview"
	GalleryID     = "gallery"
)

var (
	ErrNoElement   = errors.New("no such element")
	ErrWrongType   = errors.New("element has another type")
	ErrDuplicateID = errors.New("duplicate element id")
)

// Document is a set of elements addressed by ID.
type Document struct {
	mu    sync.RWMutex
	elems map[string]Element
}

// NewDocument returns a document holding elems. It panics on duplicate IDs.
func NewDocument(elems ...Element) *Document {
	d := &Document{elems: make(map[string]Element)}
	for _, el := range elems {
		if err := d.Register(el); err != nil {
			panic(err)
		}
	}
	return d
}

// Register adds el under its ID.
func (d *Document) Register(el Element) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.elems[el.ID()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateID, el.ID())
	}
	d.elems[el.ID()] = el
	return nil
}

// Remove deletes the element with id, if any.
func (d *Document) Remove(id string) {
	d.mu.Lock()
	delete(d.elems, id)
	d.mu.Unlock()
}

// Lookup returns the element with id.
func (d *Document) Lookup(id string) (Element, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	el, ok := d.elems[id]
	return el, ok
}

// Has reports whether an element with id exists.
func (d *Document) Has(id string) bool {
	_, ok := d.Lookup(id)
	return ok
}

func (d *Document) Container(id string) (*Container, error) {
	return lookup[*Container](d, id)
}

func (d *Document) MapContainer(id string) (*MapContainer, error) {
	return lookup[*MapContainer](d, id)
}

func (d *Document) TextInput(id string) (*TextInput, error) {
	return lookup[*TextInput](d, id)
}

func (d *Document) FileInput(id string) (*FileInput, error) {
	return lookup[*FileInput](d, id)
}

func lookup[T Element](d *Document, id string) (T, error) {
	var zero T
	if d == nil {
		return zero, fmt.Errorf("%w: %q", ErrNoElement, id)
	}
	el, ok := d.Lookup(id)
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrNoElement, id)
	}
	t, ok := el.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q is %T", ErrWrongType, id, el)
	}
	return t, nil
}
