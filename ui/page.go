package ui

import "github.com/olablt/gio-photomap/page"

// ImageExtensions are the file types offered by the image input.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// NewMapPage returns the document of the map page with all its elements.
func NewMapPage() *page.Document {
	return page.NewDocument(
		page.NewMapContainer(page.MapID),
		page.NewTextInput(page.SearchInputID, "Search places"),
		page.NewFileInput(page.ImageInputID, ImageExtensions...),
		page.NewContainer(page.PreviewID),
		page.NewContainer(page.GalleryID),
	)
}
