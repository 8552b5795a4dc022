package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const sampleCatalog = `
program_start: "-1"
tips:
  - id: breathe
    headline: Box breathing
    body: Four counts in, hold, out, hold.
    topics: [stress, focus, sleep]
  - id: walk
    headline: Take a walk
  - id: water
    headline: Drink water
    saved: true
  - id: stretch
    headline: Stretch
days:
  - day: "-2"
    daily: walk
  - day: yesterday
    daily: breathe
    extra: [walk]
    completed: [breathe]
  - day: today
    daily: water
    extra: [walk, stretch]
    explore: [breathe]
    locked: [stretch]
`

func TestParseAndSeedCatalog(t *testing.T) {
	cat, err := ParseCatalog([]byte(sampleCatalog))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	repo := setupRepo(t)
	ctx := context.Background()
	if err := Seed(ctx, repo, cat, testNow); err != nil {
		t.Fatalf("seed: %v", err)
	}

	summaries, err := repo.DaySummaries(ctx)
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("expected 3 days, got %d", len(summaries))
	}
	if !summaries[0].BeforeProgram || summaries[1].BeforeProgram {
		t.Fatalf("program start not applied: %+v", summaries)
	}
	if !summaries[1].Completed || summaries[2].Completed {
		t.Fatalf("unexpected completion flags: %+v", summaries)
	}

	today, err := repo.TipsForDay(ctx, testNow)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if today.DailyTip.ID != "water" || !today.DailyTip.Saved {
		t.Fatalf("unexpected daily tip: %+v", today.DailyTip)
	}
	if len(today.ExtraTips) != 2 || !today.ExtraTips[1].Locked {
		t.Fatalf("unexpected extras: %+v", today.ExtraTips)
	}
	if len(today.ExploreTips) != 1 || len(today.ExploreTips[0].Topics) != 3 {
		t.Fatalf("unexpected explore tips: %+v", today.ExploreTips)
	}
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cat.Tips) != 4 || len(cat.Days) != 3 {
		t.Fatalf("unexpected catalog: %+v", cat)
	}
}

func TestCatalogValidation(t *testing.T) {
	cases := map[string]string{
		"duplicate": "tips:\n  - {id: a, headline: A}\n  - {id: a, headline: B}\n",
		"unknown":   "tips:\n  - {id: a, headline: A}\ndays:\n  - {day: today, daily: b}\n",
		"no daily":  "tips:\n  - {id: a, headline: A}\ndays:\n  - {day: today, extra: [a]}\n",
		"headline":  "tips:\n  - {id: a}\n",
		"malformed": "tips: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseCatalog([]byte(raw)); !errors.Is(err, ErrInvalidCatalog) {
				t.Fatalf("expected invalid catalog, got %v", err)
			}
		})
	}
}
