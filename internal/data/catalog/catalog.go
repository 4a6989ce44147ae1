// Package catalog loads the course catalog (levels, activities, achievements) from YAML
// and upserts it by natural key.
package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/levelup-backend/internal/data/repos"
	types "github.com/yungbote/levelup-backend/internal/domain"
	"github.com/yungbote/levelup-backend/internal/modules/progress"
	"github.com/yungbote/levelup-backend/internal/platform/dbctx"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

// PathEnv points at a catalog file that replaces the embedded one.
const PathEnv = "CATALOG_YAML"

//go:embed catalog.yaml
var catalogFS embed.FS

type Catalog struct {
	Version      int              `yaml:"version" validate:"gte=1"`
	Levels       []LevelDef       `yaml:"levels" validate:"required,min=1,dive"`
	Achievements []AchievementDef `yaml:"achievements" validate:"dive"`
}

type LevelDef struct {
	Order           int           `yaml:"order" validate:"gte=1"`
	Title           string        `yaml:"title" validate:"required"`
	Description     string        `yaml:"description"`
	MinPointsToPass int           `yaml:"min_points_to_pass" validate:"gte=0"`
	Activities      []ActivityDef `yaml:"activities" validate:"dive"`
}

type ActivityDef struct {
	Slug        string         `yaml:"slug" validate:"required,max=191"`
	Type        string         `yaml:"type" validate:"required"`
	Name        string         `yaml:"name" validate:"required"`
	Description string         `yaml:"description"`
	Points      int            `yaml:"points" validate:"gte=0"`
	Position    int            `yaml:"position" validate:"gte=0"`
	Content     map[string]any `yaml:"content"`
}

type AchievementDef struct {
	Key         string `yaml:"key" validate:"required,max=191"`
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description"`
	Type        string `yaml:"type" validate:"required,oneof=LEVEL_COMPLETION PERFECT_QUIZ FIRST_STEPS"`
	// Level is the order of the level a LEVEL_COMPLETION achievement belongs to.
	Level int    `yaml:"level" validate:"gte=0"`
	Icon  string `yaml:"icon"`
}

var validate = validator.New()

// Load reads the catalog from path, or the embedded catalog when path is empty.
func Load(path string) (*Catalog, error) {
	data, err := read(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// LoadFromEnv honours CATALOG_YAML.
func LoadFromEnv() (*Catalog, error) {
	return Load(strings.TrimSpace(os.Getenv(PathEnv)))
}

func read(path string) ([]byte, error) {
	if path = strings.TrimSpace(path); path != "" {
		return os.ReadFile(path)
	}
	return catalogFS.ReadFile("catalog.yaml")
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks field rules, natural key uniqueness, achievement level references and activity content.
func (c *Catalog) Validate() error {
	if c == nil {
		return errors.New("catalog: missing catalog")
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	orders := map[int]bool{}
	slugs := map[string]bool{}
	for _, lvl := range c.Levels {
		if orders[lvl.Order] {
			return fmt.Errorf("catalog: duplicate level order %d", lvl.Order)
		}
		orders[lvl.Order] = true
		for _, act := range lvl.Activities {
			if slugs[act.Slug] {
				return fmt.Errorf("catalog: duplicate activity slug %q", act.Slug)
			}
			slugs[act.Slug] = true
			if err := validateContent(act); err != nil {
				return err
			}
		}
	}

	keys := map[string]bool{}
	for _, ach := range c.Achievements {
		if keys[ach.Key] {
			return fmt.Errorf("catalog: duplicate achievement key %q", ach.Key)
		}
		keys[ach.Key] = true
		if types.AchievementType(ach.Type) == types.AchievementLevelCompletion && !orders[ach.Level] {
			return fmt.Errorf("catalog: achievement %q references unknown level %d", ach.Key, ach.Level)
		}
	}
	return nil
}

func validateContent(act ActivityDef) error {
	typ := types.ParseActivityType(act.Type)
	if !typ.Known() {
		return fmt.Errorf("catalog: activity %q has unknown type %q", act.Slug, act.Type)
	}
	raw, err := contentJSON(act.Content)
	if err != nil {
		return fmt.Errorf("catalog: activity %q: %w", act.Slug, err)
	}
	content, err := progress.DecodeContent(typ, raw)
	if err != nil {
		return fmt.Errorf("catalog: activity %q: %w", act.Slug, err)
	}
	if err := validate.Struct(content); err != nil {
		return fmt.Errorf("catalog: activity %q content: %w", act.Slug, err)
	}
	return nil
}

func contentJSON(content map[string]any) ([]byte, error) {
	if len(content) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(content)
}

type SeedResult struct {
	Levels       int
	Activities   int
	Achievements int
}

// Seed upserts the catalog in one transaction: levels by order, activities by slug, achievements by key.
// Rows absent from the catalog are left alone.
func Seed(ctx context.Context, db *gorm.DB, set repos.Set, log *logger.Logger, c *Catalog) (SeedResult, error) {
	var out SeedResult
	if err := c.Validate(); err != nil {
		return out, err
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		levels := make([]*types.Level, 0, len(c.Levels))
		for _, lvl := range c.Levels {
			levels = append(levels, &types.Level{
				Order:           lvl.Order,
				Title:           lvl.Title,
				Description:     lvl.Description,
				MinPointsToPass: lvl.MinPointsToPass,
			})
		}
		stored, err := set.Levels.UpsertByOrder(dbc, levels)
		if err != nil {
			return fmt.Errorf("upsert levels: %w", err)
		}
		levelIDs := make(map[int]uint, len(stored))
		for _, lvl := range stored {
			levelIDs[lvl.Order] = lvl.ID
		}

		var activities []*types.Activity
		for _, lvl := range c.Levels {
			for _, act := range lvl.Activities {
				raw, err := contentJSON(act.Content)
				if err != nil {
					return err
				}
				activities = append(activities, &types.Activity{
					Slug:        act.Slug,
					LevelID:     levelIDs[lvl.Order],
					Type:        types.ParseActivityType(act.Type),
					Name:        act.Name,
					Description: act.Description,
					Points:      act.Points,
					Position:    act.Position,
					Content:     datatypes.JSON(raw),
				})
			}
		}
		if err := set.Activities.UpsertBySlug(dbc, activities); err != nil {
			return fmt.Errorf("upsert activities: %w", err)
		}

		achievements := make([]*types.Achievement, 0, len(c.Achievements))
		for _, ach := range c.Achievements {
			row := &types.Achievement{
				Key:         ach.Key,
				Name:        ach.Name,
				Description: ach.Description,
				Type:        types.AchievementType(ach.Type),
				Icon:        ach.Icon,
			}
			if row.Type == types.AchievementLevelCompletion {
				id := levelIDs[ach.Level]
				row.LevelID = &id
			}
			achievements = append(achievements, row)
		}
		if err := set.Achievements.UpsertByKey(dbc, achievements); err != nil {
			return fmt.Errorf("upsert achievements: %w", err)
		}

		out = SeedResult{Levels: len(stored), Activities: len(activities), Achievements: len(achievements)}
		return nil
	})
	if err != nil {
		return SeedResult{}, fmt.Errorf("catalog: seed: %w", err)
	}
	if log != nil {
		log.Info("catalog seeded", "levels", out.Levels, "activities", out.Activities, "achievements", out.Achievements)
	}
	return out, nil
}
