package page

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Element is a named part of a Document.
type Element interface {
	ID() string
}

// Container holds nodes that are replaced or appended as a whole. It is safe for concurrent use.
type Container struct {
	id       string
	mu       sync.RWMutex
	children []Node
	version  uint64
}

func NewContainer(id string) *Container {
	return &Container{id: id}
}

func (c *Container) ID() string { return c.id }

// Replace swaps the current content for nodes.
func (c *Container) Replace(nodes ...Node) {
	c.mu.Lock()
	c.children = append([]Node(nil), nodes...)
	c.version++
	c.mu.Unlock()
}

// Append adds nodes after the current content.
func (c *Container) Append(nodes ...Node) {
	c.mu.Lock()
	c.children = append(c.children, nodes...)
	c.version++
	c.mu.Unlock()
}

// Clear removes all content.
func (c *Container) Clear() {
	c.Replace()
}

// Children returns a copy of the content.
func (c *Container) Children() []Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Node(nil), c.children...)
}

func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.children)
}

// Version increases on every change, so a renderer can tell whether to rebuild.
func (c *Container) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// MapContainer is where a map view is mounted.
type MapContainer struct {
	id    string
	mu    sync.Mutex
	bound any
}

func NewMapContainer(id string) *MapContainer {
	return &MapContainer{id: id}
}

func (m *MapContainer) ID() string { return m.id }

// Bind records the view mounted in m, replacing any earlier one.
func (m *MapContainer) Bind(v any) {
	m.mu.Lock()
	m.bound = v
	m.mu.Unlock()
}

// Bound returns the mounted view, or nil.
func (m *MapContainer) Bound() any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bound
}

// SubmitEvent is sent when a text input is submitted.
type SubmitEvent struct {
	Value string
}

// TextInput is a single line text field.
type TextInput struct {
	id          string
	Placeholder string
	Submits     Feed[SubmitEvent]

	mu    sync.Mutex
	value string
}

func NewTextInput(id, placeholder string) *TextInput {
	return &TextInput{id: id, Placeholder: placeholder}
}

func (t *TextInput) ID() string { return t.id }

func (t *TextInput) Value() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

func (t *TextInput) SetValue(v string) {
	t.mu.Lock()
	t.value = v
	t.mu.Unlock()
}

// Submit sends the current value to the subscribers.
func (t *TextInput) Submit() {
	t.Submits.Send(SubmitEvent{Value: t.Value()})
}

// File is a selected file. Open may be called more than once.
type File struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileFromPath returns a File reading path from disk.
func FileFromPath(path string) File {
	return File{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// FileFromBytes returns a File over data held in memory.
func FileFromBytes(name string, data []byte) File {
	return File{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// FileSelectEvent is sent when files are chosen in a file input.
type FileSelectEvent struct {
	Files []File
}

// FileInput lets the user pick files. Accept lists the file extensions offered.
type FileInput struct {
	id      string
	Accept  []string
	Changes Feed[FileSelectEvent]
}

func NewFileInput(id string, accept ...string) *FileInput {
	return &FileInput{id: id, Accept: accept}
}

func (f *FileInput) ID() string { return f.id }

// Select reports a new selection to the subscribers.
func (f *FileInput) Select(files ...File) {
	f.Changes.Send(FileSelectEvent{Files: files})
}

// ClickEvent is sent when a button is pressed.
type ClickEvent struct {
	ID string
}

type Button struct {
	id     string
	Label  string
	Clicks Feed[ClickEvent]
}

func NewButton(id, label string) *Button {
	return &Button{id: id, Label: label}
}

func (b *Button) ID() string { return b.id }

func (b *Button) Click() {
	b.Clicks.Send(ClickEvent{ID: b.id})
}
