// Package store keeps themes, their locations and the photos taken there.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/olablt/gio-photomap/gallery"
	"github.com/olablt/gio-photomap/tiles"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PhotoDir is the media subdirectory photos are copied into.
const PhotoDir = "photos"

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateLocation  = errors.New("location with this name already exists in the theme")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Config selects the database and the media directory.
type Config struct {
	Driver   string // "sqlite" or "postgres"
	Path     string // sqlite file, empty for in-memory
	DSN      string // postgres connection string
	MediaDir string
}

type Store struct {
	db       *gorm.DB
	mediaDir string
	log      zerolog.Logger
}

// Open connects to the database and migrates the schema.
func Open(cfg Config, log zerolog.Logger) (*Store, error) {
	log = log.With().Str("component", "store").Logger()
	gcfg := &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch strings.ToLower(cfg.Driver) {
	case "postgres":
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DSN,
			PreferSimpleProtocol: true,
		}), gcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		log.Info().Msg("connected to postgres")
	case "sqlite", "":
		gcfg.PrepareStmt = true
		dsn := cfg.Path
		if dsn == "" {
			dsn = "file::memory:"
		}
		db, err = gorm.Open(sqlite.Open(dsn), gcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite db: %w", err)
		}
		for _, pragma := range []string{
			"PRAGMA journal_mode = WAL;",
			"PRAGMA foreign_keys = ON;",
			"PRAGMA busy_timeout = 5000;",
		} {
			if err := db.Exec(pragma).Error; err != nil {
				return nil, fmt.Errorf("error setting PRAGMA: %w", err)
			}
		}
		if cfg.Path == "" {
			// every pooled connection would open its own empty memory database
			sqlDB, err := db.DB()
			if err != nil {
				return nil, err
			}
			sqlDB.SetMaxOpenConns(1)
		}
		log.Info().Str("path", cfg.Path).Msg("using sqlite db")
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db, mediaDir: cfg.MediaDir, log: log}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// MediaDir returns the directory photo files are kept in.
func (s *Store) MediaDir() string { return s.mediaDir }

func (s *Store) CreateTheme(name string) (*Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("theme name is empty")
	}
	t := &Theme{Name: name}
	if err := s.db.Create(t).Error; err != nil {
		return nil, fmt.Errorf("creating theme: %w", err)
	}
	s.log.Info().Uint("theme", t.ID).Str("name", name).Msg("theme created")
	return t, nil
}

// Themes returns all themes, newest first.
func (s *Store) Themes() ([]Theme, error) {
	var themes []Theme
	if err := s.db.Order("created_at desc, id desc").Find(&themes).Error; err != nil {
		return nil, fmt.Errorf("listing themes: %w", err)
	}
	return themes, nil
}

func (s *Store) Theme(id uint) (*Theme, error) {
	var t Theme
	if err := s.db.First(&t, id).Error; err != nil {
		return nil, notFound(err, "theme", id)
	}
	return &t, nil
}

// AddLocation adds a location to a theme. An empty name is derived from the coordinates.
func (s *Store) AddLocation(themeID uint, name string, lat, lng float64) (*Location, error) {
	if _, err := s.Theme(themeID); err != nil {
		return nil, err
	}
	pt, err := newPoint(lat, lng)
	if err != nil {
		return nil, fmt.Errorf("adding location: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Location at %.4f, %.4f", lat, lng)
	}
	if err := s.checkLocationName(themeID, name, 0); err != nil {
		return nil, err
	}
	loc := &Location{Name: name, Latitude: lat, Longitude: lng, Point: pt, ThemeID: themeID}
	if err := s.db.Create(loc).Error; err != nil {
		return nil, fmt.Errorf("creating location: %w", err)
	}
	return loc, nil
}

func (s *Store) Location(id uint) (*Location, error) {
	var loc Location
	if err := s.db.First(&loc, id).Error; err != nil {
		return nil, notFound(err, "location", id)
	}
	return &loc, nil
}

// Locations returns the locations of a theme in creation order.
func (s *Store) Locations(themeID uint) ([]Location, error) {
	var locs []Location
	if err := s.db.Where("theme_id = ?", themeID).Order("id").Find(&locs).Error; err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	return locs, nil
}

func (s *Store) UpdateLocation(id uint, name string, lat, lng float64) (*Location, error) {
	loc, err := s.Location(id)
	if err != nil {
		return nil, err
	}
	pt, err := newPoint(lat, lng)
	if err != nil {
		return nil, fmt.Errorf("updating location: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = loc.Name
	}
	if err := s.checkLocationName(loc.ThemeID, name, loc.ID); err != nil {
		return nil, err
	}
	loc.Name = name
	loc.Latitude = lat
	loc.Longitude = lng
	loc.Point = pt
	if err := s.db.Save(loc).Error; err != nil {
		return nil, fmt.Errorf("updating location: %w", err)
	}
	return loc, nil
}

// DeleteLocation removes a location with its photos and their files.
func (s *Store) DeleteLocation(id uint) error {
	loc, err := s.Location(id)
	if err != nil {
		return err
	}
	var photos []Photo
	if err := s.db.Where("location_id = ?", loc.ID).Find(&photos).Error; err != nil {
		return fmt.Errorf("listing photos: %w", err)
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("location_id = ?", loc.ID).Delete(&Photo{}).Error; err != nil {
			return err
		}
		return tx.Delete(loc).Error
	})
	if err != nil {
		return fmt.Errorf("deleting location: %w", err)
	}
	for _, p := range photos {
		s.removeFile(p.ImagePath)
	}
	s.log.Info().Uint("location", id).Int("photos", len(photos)).Msg("location deleted")
	return nil
}

// AddPhoto copies the image read from src into the media dir and records it.
// ext is the file extension, with or without the dot.
func (s *Store) AddPhoto(themeID, locationID uint, src io.Reader, ext, caption string, takenAt *time.Time) (*Photo, error) {
	loc, err := s.Location(locationID)
	if err != nil {
		return nil, err
	}
	if loc.ThemeID != themeID {
		return nil, fmt.Errorf("location %d is not in theme %d: %w", locationID, themeID, ErrNotFound)
	}

	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext != "" {
		ext = "." + ext
	}
	rel := path.Join(PhotoDir, uuid.NewString()+ext)
	if err := s.saveFile(rel, src); err != nil {
		return nil, err
	}

	p := &Photo{
		ImagePath:  rel,
		Caption:    caption,
		TakenAt:    takenAt,
		LocationID: locationID,
		ThemeID:    themeID,
	}
	if err := s.db.Create(p).Error; err != nil {
		s.removeFile(rel)
		return nil, fmt.Errorf("creating photo: %w", err)
	}
	return p, nil
}

// DeletePhoto removes the photo record and its file.
func (s *Store) DeletePhoto(id uint) error {
	var p Photo
	if err := s.db.First(&p, id).Error; err != nil {
		return notFound(err, "photo", id)
	}
	if err := s.db.Delete(&p).Error; err != nil {
		return fmt.Errorf("deleting photo: %w", err)
	}
	s.removeFile(p.ImagePath)
	return nil
}

// Photos returns the photos of a theme, most recently taken first.
func (s *Store) Photos(themeID uint) ([]Photo, error) {
	var photos []Photo
	if err := s.db.Where("theme_id = ?", themeID).Order("taken_at desc, id desc").Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("listing photos: %w", err)
	}
	return photos, nil
}

// MapLocation is a location as shown on the map, with its gallery.
type MapLocation struct {
	ID       uint
	Name     string
	Position tiles.LatLng
	Photos   []gallery.Photo
}

// MapLocations returns the locations of a theme with their photos, most recently taken first.
func (s *Store) MapLocations(themeID uint) ([]MapLocation, error) {
	var locs []Location
	err := s.db.Where("theme_id = ?", themeID).
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("taken_at desc, id desc")
		}).
		Order("id").
		Find(&locs).Error
	if err != nil {
		return nil, fmt.Errorf("loading map locations: %w", err)
	}

	out := make([]MapLocation, 0, len(locs))
	for _, loc := range locs {
		ml := MapLocation{
			ID:       loc.ID,
			Name:     loc.Name,
			Position: tiles.LatLng{Lat: loc.Latitude, Lng: loc.Longitude},
			Photos:   make([]gallery.Photo, 0, len(loc.Photos)),
		}
		for _, p := range loc.Photos {
			ml.Photos = append(ml.Photos, GalleryPhoto(p))
		}
		out = append(out, ml)
	}
	return out, nil
}

// GalleryPhoto converts a photo record for display.
func GalleryPhoto(p Photo) gallery.Photo {
	date := "N/A"
	if p.TakenAt != nil && !p.TakenAt.IsZero() {
		date = p.TakenAt.Format("2006-01-02 15:04")
	}
	return gallery.Photo{
		URL:     gallery.MediaPrefix + p.ImagePath,
		Caption: p.Caption,
		Date:    date,
	}
}

func (s *Store) checkLocationName(themeID uint, name string, exceptID uint) error {
	var count int64
	err := s.db.Model(&Location{}).
		Where("theme_id = ? AND name = ? AND id <> ?", themeID, name, exceptID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("checking location name: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateLocation, name)
	}
	return nil
}

func (s *Store) saveFile(rel string, src io.Reader) error {
	full := filepath.Join(s.mediaDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating media dir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("creating photo file: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(full)
		return fmt.Errorf("writing photo file: %w", err)
	}
	return f.Close()
}

func (s *Store) removeFile(rel string) {
	full := filepath.Join(s.mediaDir, filepath.FromSlash(rel))
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn().Err(err).Str("path", full).Msg("removing photo file")
	}
}

func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("loading %s %d: %w", what, id, err)
}
