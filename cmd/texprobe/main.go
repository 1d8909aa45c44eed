// Command texprobe opens a texture file through the LookupEngine and
// reports its get_texture_info() metadata plus a grid of texture()
// probes across [0,1)x[0,1), counting in-range hits, out-of-range
// sentinels, and tile decode failures.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"

	"tiletexcore/internal/lookup"
	"tiletexcore/internal/texio"
	"tiletexcore/internal/texio/flatfile"
	"tiletexcore/internal/texio/pyramid"
	"tiletexcore/internal/texlog"
	"tiletexcore/internal/tileconfig"
)

func newFactory() func(path string) (texio.Reader, bool) {
	return texio.DispatchFactory(map[string]func() texio.Reader{
		".pyr": func() texio.Reader { return pyramid.New() },
		".tx":  func() texio.Reader { return pyramid.New() },
	}, func() texio.Reader { return flatfile.New() })
}

func probe(path string, cfg tileconfig.Config, grid int) error {
	slog.SetLogLoggerLevel(slog.LevelDebug)
	texlog.SetDefault(slog.Default())

	eng := lookup.New(newFactory(), int64(cfg.MaxMemoryMB)<<20, slog.Default())
	eng.SetMaxOpenFiles(cfg.MaxOpenFiles)
	eng.SetWorkers(cfg.Workers)

	var resolution [2]int
	var texturetype, textureformat string
	var channels int
	eng.GetTextureInfo(path, "resolution", &resolution)
	eng.GetTextureInfo(path, "texturetype", &texturetype)
	eng.GetTextureInfo(path, "textureformat", &textureformat)
	eng.GetTextureInfo(path, "channels", &channels)

	fmt.Printf("%s: %dx%d, %s (%s), %d channels\n",
		path, resolution[0], resolution[1], texturetype, textureformat, channels)

	if channels < 1 {
		return fmt.Errorf("texprobe: %s: broken or unreadable", path)
	}

	n := grid * grid
	bar := progressbar.Default(int64(n))

	opts := lookup.DefaultOptions()
	opts.NChannels = min(channels, 4)
	result := make([]float64, opts.NChannels)
	runflags := []bool{true}

	var ok, outOfRange, failed int
	for gy := 0; gy < grid; gy++ {
		for gx := 0; gx < grid; gx++ {
			s := []float64{(float64(gx) + 0.5) / float64(grid)}
			t := []float64{(float64(gy) + 0.5) / float64(grid)}
			eng.Texture(path, opts, runflags, 0, 0, s, t, nil, nil, nil, nil, result)
			switch result[0] {
			case 1:
				outOfRange++
			case 0.5:
				failed++
			default:
				ok++
			}
			bar.Add(1)
		}
	}
	fmt.Printf("\nok=%d out_of_range=%d failed=%d open_files=%d\n", ok, outOfRange, failed, eng.OpenFilesCount())
	return nil
}

func main() {
	configPath := flag.String("config", "", "path to a tileconfig JSON file")
	maxOpenFiles := flag.Int("max-open-files", 0, "override max open files")
	maxMemoryMB := flag.Int("max-memory-mb", 0, "override max tile cache memory in MB")
	workers := flag.Int("workers", 0, "override sample worker-pool size")
	grid := flag.Int("grid", 8, "probe grid resolution per axis")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: texprobe [flags] <texture-path>")
		os.Exit(2)
	}

	var cfg tileconfig.Config
	if *configPath != "" {
		var err error
		cfg, err = tileconfig.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	cfg.Resolve(tileconfig.Flags{MaxOpenFiles: *maxOpenFiles, MaxMemoryMB: *maxMemoryMB, Workers: *workers})

	if err := probe(flag.Arg(0), cfg, *grid); err != nil {
		log.Fatal(err)
	}
}
