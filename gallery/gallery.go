// Package gallery renders photo records into a page container.
package gallery

import (
	"fmt"
	"io"

	"github.com/olablt/gio-photomap/page"
)

// Photo is one gallery entry.
type Photo struct {
	URL     string
	Caption string
	Date    string
}

// Class names of the rendered blocks.
const (
	ItemClass = "photo-item"
	InfoClass = "photo-info"
)

// Blocks returns one photo-item block per photo, in order.
func Blocks(photos []Photo) []page.Node {
	nodes := make([]page.Node, 0, len(photos))
	for _, p := range photos {
		nodes = append(nodes, &page.Block{
			Class: ItemClass,
			Children: []page.Node{
				&page.Image{Src: p.URL, Alt: p.Caption},
				&page.Block{
					Class: InfoClass,
					Children: []page.Node{
						&page.Text{Tag: "p", Value: p.Caption},
						&page.Text{Tag: "small", Value: "Date: " + p.Date},
					},
				},
			},
		})
	}
	return nodes
}

// Render replaces the content of the container containerID with the photos.
func Render(doc *page.Document, photos []Photo, containerID string) error {
	c, err := doc.Container(containerID)
	if err != nil {
		return fmt.Errorf("gallery container: %w", err)
	}
	c.Clear()
	c.Append(Blocks(photos)...)
	return nil
}

// WriteHTML writes the gallery markup for photos to w.
func WriteHTML(w io.Writer, photos []Photo) error {
	return page.WriteHTML(w, Blocks(photos)...)
}
