package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/levelup-backend/internal/data/repos"
	"github.com/yungbote/levelup-backend/internal/data/repos/testutil"
	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/modules/progress"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
)

func TestEmbeddedCatalogIsValid(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}
	if len(c.Levels) != 3 {
		t.Fatalf("levels: want=3 got=%d", len(c.Levels))
	}
	if c.Levels[0].Order != 1 || len(c.Levels[0].Activities) != 3 {
		t.Fatalf("first level: %+v", c.Levels[0])
	}
}

func TestLoadFromEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := `
version: 1
levels:
  - order: 1
    title: Only
    min_points_to_pass: 10
    activities:
      - slug: only-reading
        type: reading
        name: Only Reading
        points: 10
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(PathEnv, path)
	c, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Levels) != 1 || c.Levels[0].Activities[0].Slug != "only-reading" {
		t.Fatalf("override not used: %+v", c.Levels)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"duplicate order": `
version: 1
levels:
  - {order: 1, title: A, min_points_to_pass: 1}
  - {order: 1, title: B, min_points_to_pass: 1}
`,
		"duplicate slug": `
version: 1
levels:
  - order: 1
    title: A
    activities:
      - {slug: x, type: READING, name: X}
      - {slug: x, type: READING, name: Y}
`,
		"unknown activity type": `
version: 1
levels:
  - order: 1
    title: A
    activities:
      - {slug: x, type: VIDEO, name: X}
`,
		"dangling level achievement": `
version: 1
levels:
  - {order: 1, title: A}
achievements:
  - {key: lvl-9, name: Nine, type: LEVEL_COMPLETION, level: 9}
`,
		"bad achievement type": `
version: 1
levels:
  - {order: 1, title: A}
achievements:
  - {key: k, name: K, type: SPEEDRUN}
`,
		"quiz question without answer": `
version: 1
levels:
  - order: 1
    title: A
    activities:
      - slug: q
        type: QUIZ
        name: Q
        content:
          questions:
            - {id: q1, prompt: P, options: [a, b]}
`,
		"no levels": `
version: 1
levels: []
`,
	}
	for name, body := range cases {
		if _, err := Parse([]byte(body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	ctx := context.Background()
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	for i := 0; i < 2; i++ {
		res, err := Seed(ctx, db, set, log, c)
		if err != nil {
			t.Fatalf("seed run %d: %v", i, err)
		}
		if res.Levels != 3 || res.Activities != 6 || res.Achievements != 5 {
			t.Fatalf("seed run %d result: %+v", i, res)
		}
	}

	var levels, activities, achievements int64
	db.Model(&types.Level{}).Count(&levels)
	db.Model(&types.Activity{}).Count(&activities)
	db.Model(&types.Achievement{}).Count(&achievements)
	if levels != 3 || activities != 6 || achievements != 5 {
		t.Fatalf("rows: levels=%d activities=%d achievements=%d", levels, activities, achievements)
	}

	dbc := dbctx.Context{Ctx: ctx}
	lvl, err := set.Levels.GetByOrder(dbc, 1)
	if err != nil || lvl == nil {
		t.Fatalf("level 1: %v", err)
	}
	ach, err := set.Achievements.FindLevelCompletion(dbc, lvl.ID)
	if err != nil || ach == nil || ach.Key != "level-1-master" {
		t.Fatalf("level 1 achievement: %+v err=%v", ach, err)
	}

	act, err := set.Activities.GetBySlug(dbc, "security-detective")
	if err != nil || act == nil {
		t.Fatalf("lab activity: %v", err)
	}
	content, err := progress.DecodeContent(act.Type, act.Content)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	lab, ok := content.(progress.LabContent)
	if !ok || len(lab.Scenarios) != 2 {
		t.Fatalf("lab content: %#v", content)
	}
	if multi, ok := lab.Scenarios[1].CorrectAnswer.([]any); !ok || len(multi) != 2 {
		t.Fatalf("multi-select answer: %#v", lab.Scenarios[1].CorrectAnswer)
	}
}

func TestSeedUpdatesChangedDefinitions(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	ctx := context.Background()

	first := `
version: 1
levels:
  - order: 1
    title: Old
    min_points_to_pass: 10
    activities:
      - {slug: a, type: READING, name: A, points: 10}
`
	c, err := Parse([]byte(first))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := Seed(ctx, db, set, log, c); err != nil {
		t.Fatalf("seed: %v", err)
	}
	c, err = Parse([]byte(strings.NewReplacer("Old", "New", "points: 10", "points: 25").Replace(first)))
	if err != nil {
		t.Fatalf("parse updated: %v", err)
	}
	if _, err := Seed(ctx, db, set, log, c); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	dbc := dbctx.Context{Ctx: ctx}
	lvl, _ := set.Levels.GetByOrder(dbc, 1)
	act, _ := set.Activities.GetBySlug(dbc, "a")
	if lvl == nil || lvl.Title != "New" || act == nil || act.Points != 25 {
		t.Fatalf("updated rows: level=%+v activity=%+v", lvl, act)
	}
}
