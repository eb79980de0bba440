// Command gintendo loads an iNES ROM and runs it.
package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/bdwalton/gintendo/console"
	"github.com/bdwalton/gintendo/mappers"
	"github.com/bdwalton/gintendo/nesrom"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	romFile  = flag.String("nes_rom", "", "Path to NES ROM to run.")
	logLevel = flag.String("log-level", "info", "Log level: trace, debug, info, warn, error.")
	headless = flag.Bool("headless", false, "Skip ebiten window creation; run the bus loop without a display.")
	breaks   = flag.String("break", "", "Comma-separated hex addresses (eg f000,f1a2) to preload as BIOS breakpoints.")
	bios     = flag.Bool("bios", false, "Drop into the interactive debugger instead of free-running.")
)

func main() {
	flag.Parse()

	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", *logLevel).Msg("invalid -log-level")
	}
	zerolog.SetGlobalLevel(lvl)

	rom, err := nesrom.Load(*romFile)
	if err != nil {
		log.Fatal().Err(err).Str("rom", *romFile).Msg("couldn't load ROM")
	}

	m, err := mappers.Get(rom)
	if err != nil {
		log.Fatal().Err(err).Msg("couldn't resolve mapper")
	}

	bus := console.New(m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *bios {
		bus.BIOS(ctx, parseBreakpoints(*breaks)...)
		return
	}

	go bus.Run(ctx)

	if *headless {
		<-ctx.Done()
		return
	}

	if err := ebiten.RunGame(bus); err != nil {
		log.Fatal().Err(err).Msg("ebiten run loop failed")
	}
	cancel()
	os.Exit(0)
}

func parseBreakpoints(spec string) []uint16 {
	if spec == "" {
		return nil
	}

	var out []uint16
	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseUint(tok, 16, 16)
		if err != nil {
			log.Warn().Str("token", tok).Err(err).Msg("skipping invalid -break address")
			continue
		}
		out = append(out, uint16(v))
	}
	return out
}
