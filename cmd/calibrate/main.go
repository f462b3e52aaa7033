// Command calibrate computes per-axis badge-threshold percentiles for a
// content bundle. Content designers run it offline against a YAML content
// pack and copy the resulting values into the badge catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kerian/fable/internal/adapters/content"
	"github.com/kerian/fable/internal/adapters/repository"
	"github.com/kerian/fable/internal/adapters/repository/sqlite"
	service "github.com/kerian/fable/internal/app"
	"github.com/kerian/fable/internal/config"
	"github.com/kerian/fable/internal/domain/axis"
	"github.com/kerian/fable/pkg/logger"
)

const runTimeout = 2 * time.Minute

func main() {
	var (
		contentDir     = flag.String("content", "", "Directory of YAML content packs (default: config content_dir)")
		bundleID       = flag.String("bundle", "", "Content bundle ID to calibrate")
		percentilesCSV = flag.String("percentiles", "", "Comma-separated percentiles in [0,100] (default: config percentiles)")
		storeDSN       = flag.String("store", "", "SQLite database path for durable player state (default: config store_dsn; empty keeps everything in memory)")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Named("calibrate")

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Err(err))
		_ = logger.SetLevelString("info")
	}

	dir := *contentDir
	if dir == "" {
		dir = cfg.ContentDir
	}
	dsn := *storeDSN
	if dsn == "" {
		dsn = cfg.StoreDSN
	}
	percentiles := cfg.Percentiles
	if *percentilesCSV != "" {
		percentiles, err = parsePercentiles(*percentilesCSV)
		if err != nil {
			os.Stderr.WriteString("invalid -percentiles: " + err.Error() + "\n")
			os.Exit(1)
		}
	}
	if *bundleID == "" {
		os.Stderr.WriteString("-bundle is required\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(ctx, log, dir, *bundleID, dsn, percentiles); err != nil {
		log.Error(ctx, "calibration failed", logger.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log logger.Logger, dir, bundleID, storeDSN string, percentiles []float64) error {
	pack, err := content.LoadPack(ctx, dir)
	if err != nil {
		return err
	}
	log.Info(ctx, "content pack loaded",
		logger.String("dir", dir),
		logger.Int("scenarios", len(pack.Scenarios)),
		logger.Int("bundles", len(pack.Bundles)))

	store := repository.NewMemoryStore()
	pack.Seed(store)

	// Authored content always comes from the pack; player state and the
	// badge catalog move to SQLite when a DSN is configured.
	var (
		scores  repository.ScoreStore     = store
		catalog repository.BadgeCatalog   = store
		awards  repository.UserBadgeStore = store.UserBadges()
	)
	if storeDSN != "" {
		durable, err := sqlite.Open(storeDSN)
		if err != nil {
			return fmt.Errorf("open durable store: %w", err)
		}
		defer func() { _ = durable.Close() }()
		for _, badge := range pack.Badges {
			if err := durable.PutBadge(ctx, badge); err != nil {
				return fmt.Errorf("seed badge catalog: %w", err)
			}
		}
		scores, catalog, awards = durable, durable, durable.UserBadges()
		log.Info(ctx, "durable store opened",
			logger.String("path", storeDSN),
			logger.Int("badges", len(pack.Badges)))
	}

	engine := service.New(store, store.Bundles(), scores, catalog, awards, service.WithLogger(log))

	thresholds, err := engine.CalculateBadgeThresholds(ctx, bundleID, percentiles)
	if err != nil {
		return err
	}

	printThresholds(bundleID, percentiles, thresholds)
	return nil
}

func parsePercentiles(csv string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(csv, ",") {
		p, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", part, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func printThresholds(bundleID string, percentiles []float64, thresholds map[axis.ID]map[float64]float64) {
	fmt.Printf("bundle %s\n", bundleID)
	axes := make([]string, 0, len(thresholds))
	for id := range thresholds {
		axes = append(axes, id.String())
	}
	sort.Strings(axes)

	for _, name := range axes {
		id := axis.ID(name)
		fmt.Printf("  %s:\n", id)
		for _, p := range percentiles {
			fmt.Printf("    p%-5.4g %.4f\n", p, thresholds[id][p])
		}
	}
}
