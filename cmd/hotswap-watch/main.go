package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/emberhaus/hotswap/pkg/config"
	"github.com/emberhaus/hotswap/pkg/engine"
	"github.com/emberhaus/hotswap/pkg/observability"
	"github.com/emberhaus/hotswap/pkg/watcher"
)

func main() {
	// Parse command line flags
	watchDir := flag.String("watch-dir", ".", "Directory to watch for asset changes")
	configFile := flag.String("config", "", "Optional YAML config file")
	metricsAddr := flag.String("metrics-addr", "", "Address to serve Prometheus metrics on (empty disables)")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if *configFile != "" {
		if err := config.LoadFile(cfg, *configFile); err != nil {
			log.WithError(err).Fatal("failed to load config file")
		}
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		registry := prometheus.NewRegistry()
		metrics = observability.NewMetrics(registry)
		if *metricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			go func() {
				if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
					log.WithError(err).Error("metrics server stopped")
				}
			}()
			log.Infof("Serving metrics on %s/metrics", *metricsAddr)
		}
	}

	eng := engine.New(cfg, log, metrics)
	defer eng.Close()

	w, err := watcher.New(log)
	if err != nil {
		log.WithError(err).Fatal("failed to create watcher")
	}
	defer w.Close()

	if err := w.Add(*watchDir); err != nil {
		log.WithError(err).Fatalf("failed to watch %s", *watchDir)
	}
	log.Infof("Watching %s for asset changes", *watchDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				return
			}
			plan, err := eng.HandleAssetEvent(ev)
			if err != nil {
				log.WithError(err).WithField("path", ev.Path).Warn("could not plan reload")
				continue
			}
			if plan == nil {
				continue
			}
			for i, step := range plan.Steps {
				log.WithFields(logrus.Fields{
					"plan_id":  plan.ID,
					"order":    i,
					"path":     step.Path,
					"kind":     step.Kind.String(),
					"strategy": step.Strategy.String(),
				}).Info("reload step")
			}
		case sig := <-sigCh:
			log.Infof("Received %s, shutting down", sig)
			return
		}
	}
}
