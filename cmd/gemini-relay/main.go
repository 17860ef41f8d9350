package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/edgefn/gemini-relay/internal/config"
	"github.com/edgefn/gemini-relay/internal/relayserver"
	"github.com/edgefn/gemini-relay/internal/version"
)

func main() {
	var cfgPath string
	var testConfig bool
	var showVersion bool
	flag.StringVar(&cfgPath, "config", "relay.yaml", "path to config yaml")
	flag.StringVar(&cfgPath, "c", "relay.yaml", "path to config yaml (alias of --config)")
	flag.BoolVar(&testConfig, "t", false, "test config and exit (no network)")
	flag.BoolVar(&showVersion, "V", false, "show version information")
	flag.Parse()

	// Show version and exit
	if showVersion {
		fmt.Println(version.Get())
		return
	}

	if testConfig {
		// Support nginx-like: `gemini-relay -t ./relay.yaml`
		if flag.NArg() == 1 && strings.TrimSpace(flag.Arg(0)) != "" {
			cfgPath = strings.TrimSpace(flag.Arg(0))
		}
		if err := runConfigTest(cfgPath); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, "error: "+err.Error())
			os.Exit(1)
		}
		fmt.Println("configuration ok")
		return
	}

	if err := relayserver.Run(cfgPath); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func runConfigTest(cfgPath string) error {
	if err := config.LoadDotenv(); err != nil {
		return fmt.Errorf("dotenv: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	fmt.Println("ok: config")
	if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
		fmt.Println("warn: GEMINI_API_KEY not set (relay will run degraded)")
	} else {
		fmt.Println("ok: api key")
	}
	return nil
}
