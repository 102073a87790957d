package page

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Lookup(t *testing.T) {
	doc := NewDocument(
		NewMapContainer(MapID),
		NewContainer(GalleryID),
		NewTextInput(SearchInputID, "Search"),
		NewFileInput(ImageInputID, ".png"),
	)

	m, err := doc.MapContainer(MapID)
	require.NoError(t, err)
	assert.Equal(t, MapID, m.ID())

	_, err = doc.Container(GalleryID)
	require.NoError(t, err)
	_, err = doc.TextInput(SearchInputID)
	require.NoError(t, err)
	_, err = doc.FileInput(ImageInputID)
	require.NoError(t, err)

	assert.True(t, doc.Has(GalleryID))
	assert.False(t, doc.Has(PreviewID))
}

func TestDocument_Errors(t *testing.T) {
	doc := NewDocument(NewContainer(GalleryID))

	_, err := doc.Container("missing")
	assert.ErrorIs(t, err, ErrNoElement)

	_, err = doc.MapContainer(GalleryID)
	assert.ErrorIs(t, err, ErrWrongType)

	err = doc.Register(NewContainer(GalleryID))
	assert.ErrorIs(t, err, ErrDuplicateID)

	doc.Remove(GalleryID)
	assert.False(t, doc.Has(GalleryID))

	var nilDoc *Document
	_, err = nilDoc.Container(GalleryID)
	assert.ErrorIs(t, err, ErrNoElement)
}

func TestContainer_ReplaceAppendClear(t *testing.T) {
	c := NewContainer("c")
	v0 := c.Version()

	c.Append(&Text{Tag: "p", Value: "a"})
	c.Append(&Text{Tag: "p", Value: "b"})
	assert.Equal(t, 2, c.Len())

	c.Replace(&Image{Src: "x.png"})
	require.Equal(t, 1, c.Len())
	assert.IsType(t, &Image{}, c.Children()[0])

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Greater(t, c.Version(), v0)
}

func TestContainer_ChildrenIsACopy(t *testing.T) {
	c := NewContainer("c")
	c.Replace(&Text{Value: "a"})

	kids := c.Children()
	kids[0] = &Text{Value: "changed"}

	assert.Equal(t, "a", TextContent(c.Children()[0]))
}

func TestInputs_SendEvents(t *testing.T) {
	in := NewTextInput(SearchInputID, "")
	var submitted []string
	in.Submits.Subscribe(func(e SubmitEvent) { submitted = append(submitted, e.Value) })
	in.SetValue("tokyo tower")
	in.Submit()
	assert.Equal(t, []string{"tokyo tower"}, submitted)

	files := NewFileInput(ImageInputID)
	var selected int
	files.Changes.Subscribe(func(e FileSelectEvent) { selected = len(e.Files) })
	files.Select(FileFromBytes("a.png", []byte("x")), FileFromBytes("b.png", []byte("y")))
	assert.Equal(t, 2, selected)

	btn := NewButton("map-view", "Map")
	var clicked string
	btn.Clicks.Subscribe(func(e ClickEvent) { clicked = e.ID })
	btn.Click()
	assert.Equal(t, "map-view", clicked)
}

func TestFileFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg bytes"), 0o644))

	f := FileFromPath(path)
	assert.Equal(t, "photo.jpg", f.Name)

	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
}

func TestMapContainer_Bind(t *testing.T) {
	m := NewMapContainer(MapID)
	assert.Nil(t, m.Bound())
	m.Bind("view")
	assert.Equal(t, "view", m.Bound())
}

func TestByClassAndImages(t *testing.T) {
	nodes := []Node{
		&Block{Class: "photo-item", Children: []Node{
			&Image{Src: "a.jpg"},
			&Block{Class: "photo-info", Children: []Node{&Text{Tag: "p", Value: "A"}}},
		}},
		&Block{Class: "photo-item", Children: []Node{&Image{Src: "b.jpg"}}},
	}

	assert.Len(t, ByClass(nodes, "photo-item"), 2)
	assert.Len(t, ByClass(nodes, "photo-info"), 1)

	imgs := Images(nodes)
	require.Len(t, imgs, 2)
	assert.Equal(t, "a.jpg", imgs[0].Src)
	assert.Equal(t, "A", TextContent(nodes[0]))
}
