// Command poolcurl issues HTTP requests through a scheme-routed pool
// manager. Alongside ordinary http/https URLs it accepts Unix socket URLs
// of the form http+unix://<percent-encoded-path>/<request-path>:
//
//	poolcurl 'http+unix://%2Fvar%2Frun%2Fserver.sock/status'
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mir00r/conn-pool/internal/config"
	"github.com/mir00r/conn-pool/internal/handler"
	"github.com/mir00r/conn-pool/internal/manager"
	"github.com/mir00r/conn-pool/pkg/logger"
)

const requestTimeout = 60 * time.Second

// headerFlags collects repeated -H "Name: value" flags
type headerFlags []string

func (h *headerFlags) String() string {
	return strings.Join(*h, ", ")
}

func (h *headerFlags) Set(value string) error {
	*h = append(*h, value)
	return nil
}

func main() {
	os.Exit(run())
}

// run carries main's body so deferred cleanup survives the exit code path
func run() int {
	var (
		configFile = flag.String("config", "", "path to YAML configuration file")
		method     = flag.String("X", http.MethodGet, "request method")
		data       = flag.String("d", "", "request body")
		verbose    = flag.Bool("v", false, "log at debug level")
		headers    headerFlags
	)
	flag.Var(&headers, "H", "request header (repeatable, \"Name: value\")")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: poolcurl [flags] URL...")
		flag.PrintDefaults()
		return 2
	}

	// Load configuration
	cfg := config.DefaultConfig()
	if *configFile != "" {
		loaded, err := config.LoadFromFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
		File:   cfg.Logging.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	// The unix-aware manager routes http, https and http+unix
	mgr := manager.NewUnix(cfg, log)
	defer mgr.Close()

	// Optional diagnostics API while requests run
	if cfg.Admin.Enabled {
		adminHandler := handler.NewAdminHandler(mgr, log)
		adminServer := &http.Server{
			Addr:    cfg.Admin.Addr,
			Handler: adminHandler.Router(),
		}
		go func() {
			log.Infof("Diagnostics API listening on %s", cfg.Admin.Addr)
			if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("Diagnostics API failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			adminServer.Shutdown(shutdownCtx)
		}()
	}

	exitCode := 0
	for _, rawurl := range flag.Args() {
		if err := issue(mgr, *method, rawurl, *data, headers); err != nil {
			log.WithError(err).Errorf("Request to %s failed", rawurl)
			exitCode = 1
		}
	}
	return exitCode
}

// issue performs one request and prints the response to stdout
func issue(mgr *manager.PoolManager, method, rawurl, data string, headers headerFlags) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	var body io.Reader
	if data != "" {
		body = strings.NewReader(data)
	}

	headerMap := make(map[string]string, len(headers))
	for _, h := range headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return fmt.Errorf("malformed header %q, want \"Name: value\"", h)
		}
		headerMap[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	resp, err := mgr.Request(ctx, method, rawurl, body, headerMap)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	fmt.Printf("%s %s\n", resp.Proto, resp.Status)
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	os.Stdout.Write(respBody)
	if len(respBody) > 0 && respBody[len(respBody)-1] != '\n' {
		fmt.Println()
	}
	return nil
}
