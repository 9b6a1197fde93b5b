package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"gregoryjjb/carousel/gpio"
)

func init() {
	InitializeLogger()
}

// Populated by ldflags
var (
	version            string
	buildUnixTimestamp string
	commitHash         string
)

func main() {
	ts, _ := strconv.ParseInt(buildUnixTimestamp, 10, 64)
	info := BuildInfo{
		Version:    version,
		CommitHash: commitHash,
		BuiltAt:    time.Unix(ts, 0),
	}

	versionFlag := flag.Bool("version", false, "Print version")
	systemdFlag := flag.Bool("systemd", false, "Print systemd service file")
	configFlag := flag.String("config", "", "Path to "+ConfigFileName)
	flag.Parse()

	if *versionFlag {
		fmt.Println("Carousel version:", info.Version)
		fmt.Println("Built on:", info.BuiltAt)
		fmt.Println("Commit hash:", info.CommitHash)
		return
	}

	if *systemdFlag {
		if err := SystemdServiceFile(os.Stdout, *configFlag); err != nil {
			log.Fatal().Err(err).Msg("Could not render systemd service file")
		}
		return
	}

	log.Info().
		Str("version", info.Version).
		Str("build_timestamp", info.BuiltAt.Format(time.RFC3339)).
		Str("commit_hash", info.CommitHash).
		Msg("Initializing Carousel")

	config, err := NewConfig(newCarouselOSFS(), Flags{ConfigPath: *configFlag}, os.Getenv)
	if err != nil {
		log.Fatal().Err(err).Msg("Config initialization failed")
	}
	zerolog.SetGlobalLevel(config.LogLevel())

	var indicator Indicator
	if pinout := config.Pinout(); len(pinout) > 0 {
		ind, err := gpio.Open(pinout)
		if err != nil {
			log.Err(err).Msg("GPIO initialization failed, continuing without indicator")
		} else {
			indicator = ind
			defer ind.Close()
		}
	}

	rotation, err := NewRotation(config.Members(), config.HistorySize(), indicator)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid members in config")
	}
	log.Info().Strs("members", rotation.Members()).Msg("Rotation ready")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return rotation.Run(ctx, config.AutoAdvance())
	})
	g.Go(func() error {
		return StartServer(ctx, config, info, rotation)
	})

	if err := g.Wait(); err != nil {
		log.Err(err).Msg("Server closed with error")
	}
}
