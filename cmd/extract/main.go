// Command extract fetches the configured archive tables, assembles the
// dataset, and writes it to the requested output files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/adapter/archive"
	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/adapter/export"
	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/adapter/geocode"
	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/adapter/httpserver"
	kafkaadapter "github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/adapter/kafka"
	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/config"
	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/domain"
	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/observability"
	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "extract:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "configs", "state config file or directory")
		csvPath    = flag.String("csv", "", "write the dataset as CSV to this path")
		htmlPath   = flag.String("html", "", "write the dataset as HTML to this path")
		xlsxPath   = flag.String("xlsx", "", "write the dataset as XLSX to this path")
		appendPath = flag.String("append", "", "supplementary record file or directory")
		title      = flag.String("title", "Nuclear Test Records", "title for the HTML output")
	)
	flag.Parse()

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	states, err := config.LoadStates(*configPath)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(settings.LogLevel, settings.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if settings.HTTPAddr != "" {
		srv := httpserver.NewServer(settings.HTTPAddr, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	source := archive.NewClient(settings.FetchTimeout, logger, metrics)
	runner := pipeline.New(source, logger, metrics)

	ds, err := runner.Run(ctx, states)
	if err != nil {
		return err
	}

	if *appendPath != "" {
		if err := runner.AppendSupplementary(ds, states, *appendPath); err != nil {
			return err
		}
	}

	if settings.GeocodeEnabled() {
		if geoCfg := geocodeColumns(states); geoCfg != nil {
			client := geocode.NewClient(settings.MapboxToken, settings.MapboxTimeout, logger, metrics)
			geocoder := geocode.NewCachedGeocoder(client, settings.MapboxCacheSize, metrics)
			metrics.GeocodeEnabled.Set(1)
			logger.Info("geocoding enabled", "cache_size", settings.MapboxCacheSize)
			domain.EnrichWithGeocoding(ctx, ds, geoCfg.Lat, geoCfg.Lon, geocoder, logger)
		} else {
			logger.Warn("geocoding token set but no state configures coordinate columns")
		}
	}

	if err := writeOutputs(ds, *csvPath, *htmlPath, *xlsxPath, *title); err != nil {
		return err
	}

	if settings.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(settings, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		if err := writer.PublishDataset(ctx, ds); err != nil {
			return err
		}
	}

	logger.Info("extraction complete", "records", len(ds.Records), "columns", len(ds.Columns))
	return nil
}

// geocodeColumns returns the coordinate column pair shared by the configured
// states, or nil when no state enables geocoding.
func geocodeColumns(states []*config.StateConfig) *config.GeocodeConfig {
	for _, st := range states {
		if st.Geocode != nil {
			return st.Geocode
		}
	}
	return nil
}

func writeOutputs(ds *domain.Dataset, csvPath, htmlPath, xlsxPath, title string) error {
	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			return err
		}
		err = export.WriteCSV(f, ds, export.CSVOptions{BOMPrefix: true})
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("csv output: %w", err)
		}
	}
	if htmlPath != "" {
		f, err := os.Create(htmlPath)
		if err != nil {
			return err
		}
		err = export.WriteHTML(f, ds, title)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("html output: %w", err)
		}
	}
	if xlsxPath != "" {
		if err := export.WriteXLSX(xlsxPath, ds); err != nil {
			return fmt.Errorf("xlsx output: %w", err)
		}
	}
	return nil
}
