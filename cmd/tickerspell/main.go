// Copyright 2025 The TickerSpell Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the ticker spelling server and CLI application.

TickerSpell reads free text and finds the stock ticker symbols hidden in it:
the letters of one to three consecutive words may spell a symbol when picked
in order. Out of every possible reading it keeps the set of non-overlapping
tickers with the best score under a named investment strategy, and tags each
character of the text with the role it plays so callers can highlight it.

# Usage

Start the msgpack IPC server with the configured universe:

	tickerspell

Use a custom universe file and enable debug mode:

	tickerspell -universe /path/to/metadata.json -d

Run in CLI mode for interactive testing, printing all five strategies:

	tickerspell -c -all

Convert a metadata.json universe into a msgpack snapshot that loads faster:

	tickerspell -universe data/metadata.json -snapshot data/universe.msgpack

# Configuration

Runtime configuration is managed through a TOML file:

	[engine]
	max_input = 3000
	max_span = 3
	tie_policy = "skip"

	[universe]
	path = "data/metadata.json"
	min_price = 5.0
	min_volume = 100000

	[server]
	workers = 2
	default_strategy = ""

	[cli]
	strategy = "dividendDaddy"
	show_all = false

The config file is created with defaults if it doesn't exist. The
TICKERSPELL_UNIVERSE, TICKERSPELL_STRATEGY and TICKERSPELL_WORKERS variables,
read from the environment or a .env file, override it.

# Strategies

	dividendDaddy  high yield, low beta
	moonShot       high beta, not yet overbought
	fallingKnife   oversold and below the 200 day average
	overHyped      overbought
	instWhale      large and liquid

# Command Line Flags

	-version    Show current version
	-config     Path to a config file
	-universe   Universe file (.json metadata or .msgpack snapshot)
	-strategy   Strategy for CLI mode
	-all        Print every strategy in CLI mode
	-snapshot   Write the filtered universe as a msgpack snapshot and exit
	-d          Enable debug mode with detailed logging
	-c          Run in CLI mode instead of server mode
	-rebuild-config
	            Overwrite the default config file with defaults and exit
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/tickerspell/internal/cli"
	"github.com/bastiangx/tickerspell/internal/utils"
	"github.com/bastiangx/tickerspell/pkg/config"
	"github.com/bastiangx/tickerspell/pkg/portfolio"
	"github.com/bastiangx/tickerspell/pkg/segment"
	"github.com/bastiangx/tickerspell/pkg/server"
	"github.com/bastiangx/tickerspell/pkg/strategy"
	"github.com/bastiangx/tickerspell/pkg/universe"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0-beta"
	AppName = "tickerspell"
	gh      = "https://github.com/bastiangx/tickerspell"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main only manages the flow; loading, spelling and IPC live in their packages.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	configPath := flag.String("config", "", "Path to a custom config file")
	universePath := flag.String("universe", "", "Universe file, .json metadata or .msgpack snapshot (default from config)")
	strategyKey := flag.String("strategy", "", "Strategy for CLI mode (default from config)")
	showAll := flag.Bool("all", false, "Print every strategy in CLI mode")
	snapshotPath := flag.String("snapshot", "", "Write the filtered universe to this msgpack file and exit")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	rebuildConfig := flag.Bool("rebuild-config", false, "Overwrite the default config.toml with built-in defaults and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if *rebuildConfig {
		if err := config.RebuildConfigFile(); err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		path, _ := config.GetDefaultConfigPath()
		log.Printf("Rebuilt config at %s", path)
		return
	}

	cfg, usedConfig, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", usedConfig)

	if *universePath != "" {
		cfg.Universe.Path = *universePath
	}
	resolvedUniverse := utils.ResolvePath(cfg.Universe.Path)

	tickers, err := universe.LoadFile(resolvedUniverse)
	if err != nil {
		log.Fatalf("Failed to load universe: %v", err)
	}
	eligible := universe.Filter(tickers, universe.Eligibility{
		MinPrice:  cfg.Universe.MinPrice,
		MinVolume: int64(cfg.Universe.MinVolume),
	})
	log.Debugf("Universe: %d tickers, %d eligible", len(tickers), len(eligible))

	if *snapshotPath != "" {
		if err := universe.WriteSnapshot(*snapshotPath, eligible); err != nil {
			log.Fatalf("Failed to write snapshot: %v", err)
		}
		log.Printf("Wrote %s tickers to %s", utils.FormatWithCommas(int64(len(eligible))), *snapshotPath)
		return
	}

	tie, ok := segment.ParseTiePolicy(cfg.Engine.TiePolicy)
	if !ok {
		log.Warnf("Unknown tie_policy %q, using %v", cfg.Engine.TiePolicy, segment.DefaultTiePolicy)
		tie = segment.DefaultTiePolicy
	}
	engine := portfolio.New(eligible,
		portfolio.WithMaxInput(cfg.Engine.MaxInput),
		portfolio.WithMaxSpan(cfg.Engine.MaxSpan),
		portfolio.WithTiePolicy(tie),
	)

	ctx := context.Background()

	if *cliMode {
		log.SetReportTimestamp(false)

		var strategies []strategy.Strategy
		if !*showAll && !cfg.CLI.ShowAll {
			key := cfg.CLI.Strategy
			if *strategyKey != "" {
				key = *strategyKey
			}
			s, err := strategy.Parse(key)
			if err != nil {
				log.Fatalf("CLI error: %v", err)
			}
			strategies = []strategy.Strategy{s}
		}

		inputHandler := cli.NewInputHandler(engine, strategies, os.Stdin, os.Stdout)
		if err := inputHandler.Start(ctx); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv, err := server.NewServer(engine, server.Options{
		Workers:         cfg.Server.Workers,
		DefaultStrategy: cfg.Server.DefaultStrategy,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	showStartupInfo(resolvedUniverse, engine.Size())

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ TickerSpell ] Finds the portfolio hiding in your sentences")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(universePath string, size int) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "=============")
	fmt.Fprintln(os.Stderr, " TickerSpell ")
	fmt.Fprintln(os.Stderr, "=============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("universe: ( %s ) %s tickers", universePath, utils.FormatWithCommas(int64(size)))
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "=============")

	log.SetLevel(currentLevel)
}
