// Command vibermmctl queries a running console over its REST API.
//
//	vibermmctl [-api URL] devices|alerts|summary|assets|rules|metrics <device-id>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vibermm/internal/apiclient"
	"vibermm/internal/config"
	"vibermm/internal/logging"
)

func main() {
	cfg, _ := config.Load()

	var (
		apiURL  = flag.String("api", cfg.APIBaseURL, "Console API base URL")
		timeout = flag.Duration("timeout", 15*time.Second, "Request timeout")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: vibermmctl [-api URL] devices|alerts|summary|assets|rules|metrics <device-id>")
		os.Exit(2)
	}

	logger, err := logging.New("warn", "console", "vibermmctl")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	out, err := run(ctx, apiclient.New(*apiURL, logger), flag.Args())
	if err != nil {
		cancelTimeout()
		log.Fatalf("%s: %v", flag.Arg(0), err) //nolint:gocritic // cancel is called before Fatalf
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode: %v", err)
	}
}

func run(ctx context.Context, c *apiclient.Client, args []string) (any, error) {
	switch args[0] {
	case "devices":
		return c.GetDevices(ctx)
	case "alerts":
		return c.GetAlerts(ctx)
	case "summary":
		return c.GetDashboardData(ctx)
	case "assets":
		return c.GetAssets(ctx)
	case "rules":
		return c.GetRules(ctx)
	case "metrics":
		if len(args) < 2 {
			return nil, fmt.Errorf("device id is required")
		}
		return c.GetMetrics(ctx, args[1])
	}
	return nil, fmt.Errorf("unknown command %q", args[0])
}
