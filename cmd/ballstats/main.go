// Command ballstats runs the metric import batch: it cleans per-metric CSV
// exports, infers each metric's table schema, and persists the rows into
// keyed tables, writing one tab-separated audit artifact of rejected rows per
// run. This file keeps the CLI layer thin: config loading, metrics backend
// selection, and a single call into the batch driver.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"ballstats/internal/config"
	"ballstats/internal/metrics"
	"ballstats/internal/metrics/prompush"
)

func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
		verify            bool
	)

	flag.StringVar(&cfgPath, "config", "configs/batches/sample.json", "batch config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, none); empty consults METRICS_BACKEND")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&verify, "verify", false, "after the run, read back each table's primary key and report it")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	b, err := config.Load(cfgPath)
	if err != nil {
		fatalf("load config: %v", err)
	}

	issues := config.ValidateBatch(b)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Printf("configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	backendName := resolveMetricsBackend(metricsBackendFlg)
	switch backendName {
	case "pushgateway":
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		jobName := b.Job
		if jobName == "" {
			jobName = "ballstats"
		}
		mb, err := prompush.NewBackend(jobName, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init pushgateway backend: %v; using nop", err)
		} else {
			log.Printf("metrics: url=%v backend=%v job=%v", gwURL, backendName, jobName)
			metrics.SetBackend(mb)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "", "none":
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("batch: job=%s dir=%s storage=%s", b.Job, b.Source.Dir, b.Storage.Kind)
	}

	if err := runBatch(ctx, b, verify); err != nil {
		log.Fatalf("%v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// resolveMetricsBackend picks the backend name: the flag wins, then the
// METRICS_BACKEND environment variable, then disabled (empty).
func resolveMetricsBackend(flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	return os.Getenv("METRICS_BACKEND")
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
