package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/coachd/internal/model"
)

var ErrInvalidCatalog = errors.New("storage: invalid catalog")

// Catalog is the YAML seed format for tips and their per-day assignment.
type Catalog struct {
	ProgramStart string       `yaml:"program_start"`
	Tips         []CatalogTip `yaml:"tips"`
	Days         []CatalogDay `yaml:"days"`
}

type CatalogTip struct {
	ID       string   `yaml:"id"`
	Headline string   `yaml:"headline"`
	Body     string   `yaml:"body"`
	Topics   []string `yaml:"topics"`
	Image    string   `yaml:"image"`
	Saved    bool     `yaml:"saved"`
}

// CatalogDay.Day accepts YYYY-MM-DD, "today", or a signed day offset such
// as "-2".
type CatalogDay struct {
	Day           string   `yaml:"day"`
	BeforeProgram bool     `yaml:"before_program"`
	Daily         string   `yaml:"daily"`
	Extra         []string `yaml:"extra"`
	Explore       []string `yaml:"explore"`
	Locked        []string `yaml:"locked"`
	Completed     []string `yaml:"completed"`
}

func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return Catalog{}, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := cat.Validate(); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

func (c Catalog) Validate() error {
	known := make(map[string]struct{}, len(c.Tips))
	for _, tip := range c.Tips {
		if strings.TrimSpace(tip.ID) == "" {
			return fmt.Errorf("%w: tip without id", ErrInvalidCatalog)
		}
		if strings.TrimSpace(tip.Headline) == "" {
			return fmt.Errorf("%w: tip %s has no headline", ErrInvalidCatalog, tip.ID)
		}
		if _, dup := known[tip.ID]; dup {
			return fmt.Errorf("%w: duplicate tip %s", ErrInvalidCatalog, tip.ID)
		}
		known[tip.ID] = struct{}{}
	}
	for _, day := range c.Days {
		if day.Daily == "" {
			return fmt.Errorf("%w: day %s has no daily tip", ErrInvalidCatalog, day.Day)
		}
		ids := append([]string{day.Daily}, day.Extra...)
		ids = append(ids, day.Explore...)
		for _, id := range ids {
			if _, ok := known[id]; !ok {
				return fmt.Errorf("%w: day %s references unknown tip %s", ErrInvalidCatalog, day.Day, id)
			}
		}
	}
	return nil
}

// Seed writes the catalog into repo. Relative days resolve against now.
func Seed(ctx context.Context, repo Repository, cat Catalog, now time.Time) error {
	if err := cat.Validate(); err != nil {
		return err
	}
	loc := now.Location()
	var programStart time.Time
	if cat.ProgramStart != "" {
		start, err := model.ResolveDay(cat.ProgramStart, now)
		if err != nil {
			return fmt.Errorf("%w: program_start: %v", ErrInvalidCatalog, err)
		}
		programStart = start
	}

	for i, tip := range cat.Tips {
		row := TipRow{
			ID:                 tip.ID,
			Headline:           tip.Headline,
			Body:               tip.Body,
			Topics:             tip.Topics,
			BackgroundImageURL: tip.Image,
			Saved:              tip.Saved,
			CreatedAt:          now.Add(time.Duration(i) * time.Millisecond),
		}
		if err := repo.UpsertTip(ctx, row); err != nil {
			return fmt.Errorf("seed tip %s: %w", tip.ID, err)
		}
	}

	for _, entry := range cat.Days {
		day, err := model.ResolveDay(entry.Day, now)
		if err != nil {
			return fmt.Errorf("%w: day %q: %v", ErrInvalidCatalog, entry.Day, err)
		}
		before := entry.BeforeProgram || (!programStart.IsZero() && model.BeforeDay(day, programStart))
		if err := repo.UpsertDay(ctx, DayRow{Day: day, BeforeProgram: before}); err != nil {
			return fmt.Errorf("seed day %s: %w", entry.Day, err)
		}

		locked := toSet(entry.Locked)
		completed := toSet(entry.Completed)
		stamp := model.StartOfDay(day).Add(12 * time.Hour).In(loc)
		assign := func(id string, slot Slot, pos int) error {
			row := DayTipRow{Day: day, TipID: id, Slot: slot, Position: pos}
			_, row.Locked = locked[id]
			if _, ok := completed[id]; ok {
				at := stamp
				row.CompletedAt = &at
			}
			return repo.AssignTip(ctx, row)
		}

		if err := assign(entry.Daily, SlotDaily, 0); err != nil {
			return fmt.Errorf("seed daily tip %s: %w", entry.Daily, err)
		}
		for i, id := range entry.Extra {
			if err := assign(id, SlotExtra, i+1); err != nil {
				return fmt.Errorf("seed extra tip %s: %w", id, err)
			}
		}
		for i, id := range entry.Explore {
			if err := assign(id, SlotExplore, i+1); err != nil {
				return fmt.Errorf("seed explore tip %s: %w", id, err)
			}
		}
	}
	return nil
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
