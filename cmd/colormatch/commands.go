package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/colormatch"
	"github.com/poiesic/colormatch/batch"
	"github.com/poiesic/colormatch/colorspace"
	"github.com/poiesic/colormatch/config"
	"github.com/poiesic/colormatch/metrics"
)

// session holds an open catalog and the metrics endpoint serving it.
type session struct {
	catalog *colormatch.Catalog
	stop    func()
}

func (s *session) Close() {
	if err := s.catalog.Close(); err != nil {
		slog.Error("error closing catalog", "err", err)
	}
	if s.stop != nil {
		s.stop()
	}
}

// applyCommandOverrides copies command flags onto cfg.
func applyCommandOverrides(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("workers") {
		cfg.Batch.Workers = c.Int("workers")
	}
	if c.IsSet("queue") {
		cfg.Batch.QueueCapacity = c.Int("queue")
	}
	if c.IsSet("chunk-size") {
		cfg.Batch.ChunkSize = c.Int("chunk-size")
	}
	if c.IsSet("page-size") {
		cfg.Batch.PageSize = c.Int("page-size")
	}
	if c.IsSet("delimiter") {
		cfg.Import.Delimiter = c.String("delimiter")
	}
	if c.Bool("no-header") {
		cfg.Import.Header = false
	}
	if c.IsSet("backend") {
		cfg.Vision.Backend = c.String("backend")
	}
	if c.IsSet("vision-host") {
		cfg.Vision.Host = c.String("vision-host")
	}
	if c.IsSet("vision-model") {
		cfg.Vision.Model = c.String("vision-model")
	}
	if c.IsSet("vision-token") {
		cfg.Vision.Token = c.String("vision-token")
	}
	if err := cfg.Normalize(); err != nil {
		return err
	}
	return cfg.Validate()
}

func openSession(c *cli.Context, extra ...colormatch.CatalogOption) (*session, error) {
	cfg := loadedConfig(c)
	if err := applyCommandOverrides(c, cfg); err != nil {
		return nil, err
	}

	opts := []colormatch.CatalogOption{
		colormatch.WithVisionConfig(cfg.VisionConfig()),
		colormatch.WithPolicy(cfg.BatchPolicy()),
		colormatch.WithChunkSize(cfg.Batch.ChunkSize),
		colormatch.WithPageSize(cfg.Batch.PageSize),
		colormatch.WithDelimiter(cfg.Delimiter(), cfg.Import.Header),
		colormatch.WithLogger(slog.Default()),
	}
	if cfg.Store.InMemory {
		opts = append(opts, colormatch.WithInMemory())
	}

	s := &session{}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		observer, err := metrics.NewObserver(reg, cfg.Metrics.Namespace)
		if err != nil {
			return nil, err
		}
		stop, err := serveMetrics(cfg.Metrics.Addr, reg)
		if err != nil {
			return nil, err
		}
		s.stop = stop
		opts = append(opts, colormatch.WithObserver(observer))
	}

	catalog, err := colormatch.OpenCatalog(cfg.Store.Path, append(opts, extra...)...)
	if err != nil {
		if s.stop != nil {
			s.stop()
		}
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	s.catalog = catalog
	return s, nil
}

func serveMetrics(addr string, reg *prometheus.Registry) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "err", err)
		}
	}()
	slog.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}, nil
}

func jobOptions(c *cli.Context, total int64) []batch.Option {
	if !c.Bool("progress") {
		return nil
	}
	interval := total / 100
	if interval < 1 {
		interval = 1
	}
	return []batch.Option{batch.WithObserver(batch.NewProgressReporter(c.App.ErrWriter, total, interval))}
}

func requireID(c *cli.Context) (string, error) {
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return "", fmt.Errorf("an item ID is required")
	}
	return id, nil
}

func importCommand(c *cli.Context) error {
	if c.IsSet("delimiter") && utf8.RuneCountInString(c.String("delimiter")) != 1 {
		return fmt.Errorf("delimiter must be a single character")
	}
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	path := c.String("file")
	fmt.Fprintf(c.App.ErrWriter, "Importing %s\n", path)
	job, err := s.catalog.ImportFrom(c.Context, path, jobOptions(c, 0)...)
	printJob(c, job)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}

func backfillCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	total, err := s.catalog.Count(c.Context)
	if err != nil {
		return err
	}
	job, err := s.catalog.AnnotateAllMissing(c.Context, jobOptions(c, int64(total))...)
	printJob(c, job)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}
	return nil
}

func annotateCommand(c *cli.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	color, err := s.catalog.AnnotateAndSave(c.Context, id)
	if err != nil {
		return fmt.Errorf("annotate %s: %w", id, err)
	}
	fmt.Fprintln(c.App.Writer, color.String())
	return nil
}

func colorCommand(c *cli.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	color, err := s.catalog.GetColor(c.Context, id)
	if err != nil {
		return fmt.Errorf("color %s: %w", id, err)
	}
	fmt.Fprintln(c.App.Writer, color.String())
	return nil
}

func similarCommand(c *cli.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	rounding, err := colorspace.ParseRounding(c.String("rounding"))
	if err != nil {
		return err
	}
	s, err := openSession(c, colormatch.WithRounding(rounding))
	if err != nil {
		return err
	}
	defer s.Close()

	matches, err := s.catalog.FindSimilarItems(c.Context, id, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("similar %s: %w", id, err)
	}

	rows := make([][]string, 0, len(matches))
	for i, m := range matches {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			m.Item.ID,
			m.Item.Title,
			m.Item.Color.String(),
			strconv.FormatFloat(m.Distance, 'f', 2, 64),
		})
	}
	fmt.Fprintln(c.App.Writer, renderTable(
		[]string{"#", "ID", "Title", "Color", "Distance"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	))
	return nil
}

func showCommand(c *cli.Context) error {
	id, err := requireID(c)
	if err != nil {
		return err
	}
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	item, err := s.catalog.GetItem(c.Context, id)
	if err != nil {
		return fmt.Errorf("show %s: %w", id, err)
	}
	color := "-"
	if item.HasColor() {
		color = item.Color.String()
	}
	rows := [][]string{
		{"ID", item.ID},
		{"Title", item.Title},
		{"Gender", string(item.Gender)},
		{"Composition", item.Composition},
		{"Sleeve", item.Sleeve},
		{"Photo", item.Photo},
		{"URL", item.URL},
		{"Color", color},
		{"Updated", item.UpdatedAt.Format(time.RFC3339)},
	}
	fmt.Fprintln(c.App.Writer, renderTable([]string{"Field", "Value"}, rows, nil))
	return nil
}

func jobsCommand(c *cli.Context) error {
	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	jobs, err := s.catalog.Jobs(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, jobRow(job))
	}
	fmt.Fprintln(c.App.Writer, renderTable(jobHeaders, rows, jobAligns))
	return nil
}

func initConfigCommand(c *cli.Context) error {
	path := c.String("path")
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return err
		}
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.CreateSample(path); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, path)
	return nil
}

var (
	jobHeaders = []string{"Job", "Pipeline", "Status", "Read", "Skipped", "Failed", "Written", "Duration", "Error"}
	jobAligns  = []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
)

func jobRow(job *batch.ChunkJob) []string {
	return []string{
		strconv.FormatUint(job.ID, 10),
		job.Name,
		job.Status.String(),
		strconv.FormatInt(job.Read, 10),
		strconv.FormatInt(job.Skipped, 10),
		strconv.FormatInt(job.Failed, 10),
		strconv.FormatInt(job.Written, 10),
		job.Duration().Round(time.Millisecond).String(),
		job.Error,
	}
}

func printJob(c *cli.Context, job *batch.ChunkJob) {
	if job == nil {
		return
	}
	fmt.Fprintln(c.App.Writer, renderTable(jobHeaders, [][]string{jobRow(job)}, jobAligns))
}
