// Package content loads authored YAML content packs: scenarios, bundles
// and badge catalogs. Calibration tooling reads packs from disk into the
// in-memory stores; nothing here is used on the play-time path.
package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kerian/fable/internal/adapters/repository"
	"github.com/kerian/fable/internal/domain/progression"
	"github.com/kerian/fable/internal/domain/story"
)

// badgeSpec is the YAML shape of one catalog badge.
type badgeSpec struct {
	ID            string  `koanf:"id"`
	AgeGroupID    string  `koanf:"age_group_id"`
	CompassAxisID string  `koanf:"compass_axis_id"`
	Tier          string  `koanf:"tier"`
	TierOrder     int     `koanf:"tier_order"`
	RequiredScore float64 `koanf:"required_score"`
	ImageID       string  `koanf:"image_id"`
}

// Pack is the merged content of one pack directory.
type Pack struct {
	Scenarios []story.Scenario
	Bundles   []story.ContentBundle
	Badges    []progression.Badge
}

// packFile mirrors the YAML document layout.
type packFile struct {
	Scenarios []story.Scenario      `koanf:"scenarios"`
	Bundles   []story.ContentBundle `koanf:"bundles"`
	Badges    []badgeSpec           `koanf:"badges"`
}

// LoadPack reads every .yaml/.yml file under dir, in lexical order, and
// merges their scenarios, bundles and badges into one pack.
func LoadPack(ctx context.Context, dir string) (*Pack, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read content dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	pack := &Pack{}
	for _, name := range names {
		doc, err := loadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		pack.Scenarios = append(pack.Scenarios, doc.Scenarios...)
		pack.Bundles = append(pack.Bundles, doc.Bundles...)
		for _, spec := range doc.Badges {
			pack.Badges = append(pack.Badges, progression.Badge(spec))
		}
	}
	return pack, nil
}

func loadFile(path string) (*packFile, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load content file %s: %w", path, err)
	}
	var doc packFile
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("parse content file %s: %w", path, err)
	}
	return &doc, nil
}

// Seed loads the pack into an in-memory store so the engine can consume it
// through the regular repository ports.
func (p *Pack) Seed(store *repository.MemoryStore) {
	for i := range p.Scenarios {
		store.PutScenario(&p.Scenarios[i])
	}
	for i := range p.Bundles {
		store.PutBundle(&p.Bundles[i])
	}
	for _, badge := range p.Badges {
		store.PutBadge(badge)
	}
}
