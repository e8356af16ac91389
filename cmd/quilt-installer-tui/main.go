package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/handiism/quilt-installer/internal/config"
	"github.com/handiism/quilt-installer/internal/install"
	"github.com/handiism/quilt-installer/internal/logging"
	"github.com/handiism/quilt-installer/internal/platform"
	"github.com/handiism/quilt-installer/internal/tui"
)

func main() {
	settings, err := config.Load(config.DefaultPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.InitLog(settings.LogLevel, settings.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	// console logging would draw over the UI
	if logging.IsConsole(settings.LogFile) {
		log.SetOutput(io.Discard)
	}

	host := platform.Detect()
	installer, catalogs, err := install.NewFromSettings(settings, host)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	clientDir, err := platform.DefaultClientDir(host, os.Getenv)
	if err != nil {
		clientDir = ""
	}
	serverDir, err := platform.DefaultServerDir(os.Getwd)
	if err != nil {
		serverDir = ""
	}

	if err := tui.Run(catalogs, installer, clientDir, serverDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
