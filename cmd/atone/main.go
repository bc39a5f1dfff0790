package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/cbegin/atone-go"
	"github.com/cbegin/atone-go/internal/automaton"
	"github.com/cbegin/atone-go/internal/midiout"
	"github.com/cbegin/atone-go/internal/percussion"
	"github.com/cbegin/atone-go/internal/riff"
	"github.com/cbegin/atone-go/internal/scale"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a JSON config file")
		algorithm  = flag.String("algorithm", "", "generator: riff|lsystem|automaton")
		bpm        = flag.Int("bpm", 0, "tempo in beats per minute")
		scaleName  = flag.String("scale", "", `scale, e.g. "C major" or "F#-blues"`)
		height     = flag.Int("height", 0, "number of scale notes available")
		seed       = flag.Uint64("seed", 0, "random seed")
		drums      = flag.String("percussion", "", "percussion track name")
		bars       = flag.Int("bars", 0, "stop after N bars (0 = forever; required with -smf)")
		smfPath    = flag.String("smf", "", "render to a Standard MIDI File instead of playing")
		port       = flag.String("port", "", "MIDI output port name substring")
		logLevel   = flag.String("log-level", "warn", "debug|info|warn|error")
		listPorts  = flag.Bool("list-ports", false, "list MIDI output ports and exit")
		listNames  = flag.Bool("list", false, "list scales, percussion tracks, catalogs and strategies and exit")
		saveConfig = flag.String("save-config", "", "write the effective config to a file and exit")
	)
	flag.Parse()

	logger := atone.NewLogger(os.Stderr)
	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatal("invalid -log-level", "level", *logLevel)
	}
	logger.SetLevel(level)

	if *listPorts {
		for _, name := range midiout.PortNames() {
			fmt.Println(name)
		}
		return
	}
	if *listNames {
		printNames()
		return
	}

	cfg, err := resolveConfig(*configPath)
	if err != nil {
		logger.Fatal("load config", "err", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "algorithm":
			cfg.Algorithm = *algorithm
		case "bpm":
			cfg.BPM = *bpm
		case "scale":
			cfg.Scale = *scaleName
		case "height":
			cfg.Height = *height
		case "seed":
			cfg.Seed = *seed
		case "percussion":
			cfg.Percussion = *drums
		}
	})
	if *saveConfig != "" {
		if err := cfg.Save(*saveConfig); err != nil {
			logger.Fatal("save config", "err", err)
		}
		return
	}

	if *smfPath != "" {
		if *bars < 1 {
			logger.Fatal("-smf needs -bars")
		}
		if err := atone.WriteSMFFile(*smfPath, cfg, *bars, atone.WithLogger(logger)); err != nil {
			logger.Fatal("render", "err", err)
		}
		fmt.Printf("wrote %d bars to %s\n", *bars, *smfPath)
		return
	}

	c, err := atone.NewComposer(cfg, atone.WithLogger(logger))
	if err != nil {
		logger.Fatal("composer", "err", err)
	}
	pl, err := atone.NewPlayer(c, atone.WithPort(*port), atone.WithBars(*bars))
	if err != nil {
		logger.Fatal("player", "err", err)
	}
	ch := pl.Watch()
	if err := pl.Play(); err != nil {
		logger.Fatal("play", "err", err)
	}
	fmt.Printf("%s in %s at %d bpm\n", c.Algorithm(), c.Scale(), c.BPM())

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		if err := pl.Stop(); err != nil {
			logger.Error("stop", "err", err)
		}
	}()

	for event := range ch {
		switch event.Kind {
		case atone.EventPlaybackEnded:
			fmt.Println("playback completed")
			goto done
		case atone.EventError:
			logger.Error("playback", "err", event.Err)
			goto done
		case atone.EventBar:
			fmt.Println(describeBar(event.Bar))
		}
	}
done:
	pl.Wait()
	if err := pl.Stop(); err != nil {
		logger.Error("stop", "err", err)
	}
}

func resolveConfig(path string) (atone.Config, error) {
	if strings.TrimSpace(path) == "" {
		return atone.DefaultConfig(), nil
	}
	return atone.LoadConfig(path)
}

func describeBar(b atone.Bar) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "bar %3d  %3d notes", b.Index+1, len(b.Notes))
	switch {
	case b.Riff != nil:
		fmt.Fprintf(&sb, "  energy %3d  riffs %v", b.Riff.Energy, b.Riff.Riffs)
	case b.Automaton != nil:
		fmt.Fprintf(&sb, "  bass %v", b.Automaton.Bass)
	}
	return sb.String()
}

func printNames() {
	fmt.Println("scales:     ", strings.Join(scale.QualityNames(), " "))
	fmt.Println("percussion: ", strings.Join(percussion.Names(), ", "))
	fmt.Println("catalogs:   ", strings.Join(riff.CatalogNames(), " "))
	fmt.Println("boundary:   ", strings.Join(automaton.BoundaryNames(), " "))
	fmt.Println("bass:       ", strings.Join(automaton.BassNames(), " "))
	fmt.Println("chords:     ", strings.Join(automaton.ChordNames(), " "))
	fmt.Println("lead:       ", strings.Join(automaton.LeadNames(), " "))
}
