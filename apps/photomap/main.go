package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"gioui.org/app"
	"gioui.org/unit"
	"github.com/olablt/gio-photomap/config"
	"github.com/olablt/gio-photomap/gallery"
	"github.com/olablt/gio-photomap/logging"
	"github.com/olablt/gio-photomap/mapview"
	"github.com/olablt/gio-photomap/places"
	"github.com/olablt/gio-photomap/store"
	"github.com/olablt/gio-photomap/tiles"
	"github.com/olablt/gio-photomap/tiles/worker"
	"github.com/olablt/gio-photomap/ui"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	configDir := pflag.String("config", ".", "directory containing "+config.FileName)
	themeID := pflag.Uint("theme", 0, "theme whose locations are shown on the map")
	newTheme := pflag.String("new-theme", "", "create a theme with this name and show it")
	exportPath := pflag.String("export-gallery", "", "write the theme's photo gallery as HTML to this file and exit")
	pflag.String("log-level", "", "override logLevel from the config file")
	cmds := registerCommands(pflag.CommandLine)
	pflag.Parse()

	if err := config.Load(*configDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("logLevel", pflag.Lookup("log-level")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	graylog := ""
	if config.GetBool("graylog.enabled") {
		graylog = config.GetString("graylog.address")
	}
	log, closeLog, err := logging.Setup(logging.Options{
		Level:          config.GetString("logLevel"),
		LogsDir:        config.GetString("logsDir"),
		GraylogAddress: graylog,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	pool := worker.NewPool(config.GetInt("workers"), log)
	cleanup := func() {
		cancel()
		pool.Shutdown()
		closeLog()
	}

	st, err := store.Open(store.Config{
		Driver:   config.GetString("db.driver"),
		Path:     config.GetString("db.path"),
		DSN:      config.GetString("db.dsn"),
		MediaDir: config.GetString("media.dir"),
	}, log)
	if err != nil {
		log.Error().Err(err).Msg("opening store")
		cleanup()
		os.Exit(1)
	}
	cleanup = func() {
		cancel()
		pool.Shutdown()
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("closing store")
		}
		closeLog()
	}

	if *newTheme != "" {
		t, err := st.CreateTheme(*newTheme)
		if err != nil {
			log.Error().Err(err).Msg("creating theme")
			cleanup()
			os.Exit(1)
		}
		*themeID = t.ID
	}

	if done, err := cmds.run(st, *themeID, os.Stdout); done {
		if err != nil {
			log.Error().Err(err).Msg("command failed")
		}
		cleanup()
		if err != nil {
			os.Exit(1)
		}
		return
	}

	if *exportPath != "" {
		err := exportGallery(st, *themeID, *exportPath)
		if err != nil {
			log.Error().Err(err).Msg("exporting gallery")
		} else {
			log.Info().Str("file", *exportPath).Msg("gallery exported")
		}
		cleanup()
		if err != nil {
			os.Exit(1)
		}
		return
	}

	searcher, err := places.New(places.Config{
		Provider:     config.GetString("places.provider"),
		GoogleAPIKey: config.GetString("places.googleApiKey"),
		NominatimURL: config.GetString("places.nominatimUrl"),
		UserAgent:    config.GetString("tiles.userAgent"),
		Timeout:      config.GetDuration("places.timeout"),
	}, log)
	if err != nil {
		log.Warn().Err(err).Msg("places search disabled")
		searcher = nil
	}

	win := new(app.Window)
	win.Option(app.Title("Photo Map"), app.Size(unit.Dp(1280), unit.Dp(800)))

	m := config.Map()
	p, err := ui.Boot(ui.NewMapPage(), ui.Deps{
		Ctx:        ctx,
		Log:        log,
		Pool:       pool,
		Searcher:   searcher,
		Locations:  st,
		ThemeID:    *themeID,
		Invalidate: win.Invalidate,
		MapOptions: []mapview.Option{
			mapview.WithCenter(tiles.LatLng{Lat: m.Lat, Lng: m.Lng}),
			mapview.WithZoom(m.Zoom),
			mapview.WithMinMaxZoom(m.MinZoom, m.MaxZoom),
			mapview.WithPadding(m.Padding),
			mapview.WithTileManager(mapview.Roadmap, newTileManager("roadmap", config.GetString("tiles.roadmapUrl"), tiles.NewLocalTileProvider(), pool, log)),
			mapview.WithTileManager(mapview.Satellite, newTileManager("satellite", config.GetString("tiles.satelliteUrl"), tiles.NewDarkTileProvider(), pool, log)),
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("booting page")
		cleanup()
		os.Exit(1)
	}
	loader := gallery.NewLoader(st.MediaDir(), nil, pool, log)

	go func() {
		err := ui.NewWindow(win, p, loader, log).Run()
		if err != nil {
			log.Error().Err(err).Msg("window closed")
		}
		cleanup()
		if err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}

// newTileManager serves tiles from the URL template, falling back to generated placeholders.
func newTileManager(name, url string, placeholders tiles.TileProvider, pool *worker.Pool, log zerolog.Logger) *tiles.TileManager {
	provider := tiles.NewCombinedTileProvider(
		tiles.NewURLTileProvider(url, config.GetString("tiles.userAgent"), log),
		placeholders,
	)
	return tiles.NewTileManager(name, provider, newTileCache(name, log), pool, log)
}

func newTileCache(name string, log zerolog.Logger) tiles.Cache {
	if config.GetString("tiles.cache") != "redis" {
		return tiles.NewImageCache()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.GetString("redis.addr"),
		Password: config.GetString("redis.password"),
		DB:       config.GetInt("redis.db"),
	})
	return tiles.NewRedisCache(client, "photomap:tiles:"+name+":", config.GetDuration("tiles.cacheTtl"), log)
}

func exportGallery(st *store.Store, themeID uint, path string) error {
	if themeID == 0 {
		return fmt.Errorf("--theme is required with --export-gallery")
	}
	if _, err := st.Theme(themeID); err != nil {
		return err
	}
	photos, err := st.Photos(themeID)
	if err != nil {
		return err
	}
	items := make([]gallery.Photo, 0, len(photos))
	for _, p := range photos {
		items = append(items, store.GalleryPhoto(p))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gallery.WriteHTML(f, items); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
