package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olablt/gio-photomap/store"
	"github.com/spf13/pflag"
)

// takenLayouts are the accepted --taken formats, tried in order.
var takenLayouts = []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

// commands are the one-shot store actions run instead of opening the window.
type commands struct {
	listThemes     bool
	listLocations  bool
	addLocation    bool
	editLocation   uint
	deleteLocation uint
	addPhoto       string
	deletePhoto    uint

	name     string
	at       []float64
	location uint
	caption  string
	taken    string
}

func registerCommands(fs *pflag.FlagSet) *commands {
	c := &commands{}
	fs.BoolVar(&c.listThemes, "list-themes", false, "print all themes and exit")
	fs.BoolVar(&c.listLocations, "list-locations", false, "print the locations of --theme and exit")
	fs.BoolVar(&c.addLocation, "add-location", false, "add a location to --theme at --at with --name and exit")
	fs.UintVar(&c.editLocation, "edit-location", 0, "rename or move a location (--name, --at) and exit")
	fs.UintVar(&c.deleteLocation, "delete-location", 0, "delete a location with its photos and exit")
	fs.StringVar(&c.addPhoto, "add-photo", "", "copy this image into --location with --caption and --taken and exit")
	fs.UintVar(&c.deletePhoto, "delete-photo", 0, "delete a photo and its file and exit")

	fs.StringVar(&c.name, "name", "", "location name")
	fs.Float64SliceVar(&c.at, "at", nil, "location position as lat,lng")
	fs.UintVar(&c.location, "location", 0, "location the photo belongs to")
	fs.StringVar(&c.caption, "caption", "", "photo caption")
	fs.StringVar(&c.taken, "taken", "", "when the photo was taken, e.g. \"2024-04-01 09:30\"")
	return c
}

// run performs the requested action. done is false when no action flag was given.
func (c *commands) run(st *store.Store, themeID uint, out io.Writer) (done bool, err error) {
	switch {
	case c.listThemes:
		return true, c.printThemes(st, out)
	case c.listLocations:
		return true, c.printLocations(st, themeID, out)
	case c.addLocation:
		return true, c.doAddLocation(st, themeID, out)
	case c.editLocation != 0:
		return true, c.doEditLocation(st, out)
	case c.deleteLocation != 0:
		if err := st.DeleteLocation(c.deleteLocation); err != nil {
			return true, err
		}
		fmt.Fprintf(out, "deleted location %d\n", c.deleteLocation)
		return true, nil
	case c.addPhoto != "":
		return true, c.doAddPhoto(st, out)
	case c.deletePhoto != 0:
		if err := st.DeletePhoto(c.deletePhoto); err != nil {
			return true, err
		}
		fmt.Fprintf(out, "deleted photo %d\n", c.deletePhoto)
		return true, nil
	}
	return false, nil
}

func (c *commands) printThemes(st *store.Store, out io.Writer) error {
	themes, err := st.Themes()
	if err != nil {
		return err
	}
	for _, t := range themes {
		fmt.Fprintf(out, "%d\t%s\n", t.ID, t.Name)
	}
	return nil
}

func (c *commands) printLocations(st *store.Store, themeID uint, out io.Writer) error {
	if themeID == 0 {
		return errors.New("--theme is required with --list-locations")
	}
	locs, err := st.Locations(themeID)
	if err != nil {
		return err
	}
	for _, l := range locs {
		fmt.Fprintf(out, "%d\t%s\t%.6f,%.6f\n", l.ID, l.Name, l.Latitude, l.Longitude)
	}
	return nil
}

func (c *commands) doAddLocation(st *store.Store, themeID uint, out io.Writer) error {
	if themeID == 0 {
		return errors.New("--theme is required with --add-location")
	}
	lat, lng, err := c.position()
	if err != nil {
		return err
	}
	loc, err := st.AddLocation(themeID, c.name, lat, lng)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "added location %d\t%s\n", loc.ID, loc.Name)
	return nil
}

func (c *commands) doEditLocation(st *store.Store, out io.Writer) error {
	loc, err := st.Location(c.editLocation)
	if err != nil {
		return err
	}
	lat, lng := loc.Latitude, loc.Longitude
	if c.at != nil {
		if lat, lng, err = c.position(); err != nil {
			return err
		}
	}
	loc, err = st.UpdateLocation(loc.ID, c.name, lat, lng)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "updated location %d\t%s\n", loc.ID, loc.Name)
	return nil
}

func (c *commands) doAddPhoto(st *store.Store, out io.Writer) error {
	if c.location == 0 {
		return errors.New("--location is required with --add-photo")
	}
	loc, err := st.Location(c.location)
	if err != nil {
		return err
	}
	takenAt, err := parseTaken(c.taken)
	if err != nil {
		return err
	}
	f, err := os.Open(c.addPhoto)
	if err != nil {
		return err
	}
	defer f.Close()

	p, err := st.AddPhoto(loc.ThemeID, loc.ID, f, filepath.Ext(c.addPhoto), c.caption, takenAt)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "added photo %d\t%s\n", p.ID, p.ImagePath)
	return nil
}

func (c *commands) position() (lat, lng float64, err error) {
	if len(c.at) != 2 {
		return 0, 0, fmt.Errorf("--at wants lat,lng, got %d values", len(c.at))
	}
	return c.at[0], c.at[1], nil
}

func parseTaken(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range takenLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("cannot parse --taken %q", s)
}
