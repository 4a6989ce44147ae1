package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/levelup-backend/internal/app"
	"github.com/yungbote/levelup-backend/internal/data/catalog"
)

func main() {
	var path string
	var check bool
	flag.StringVar(&path, "file", "", "catalog yaml (defaults to CATALOG_YAML or the embedded catalog)")
	flag.BoolVar(&check, "check", false, "validate the catalog without touching the database")
	flag.Parse()

	if check {
		c, err := loadCatalog(path)
		if err != nil {
			fmt.Printf("invalid catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("catalog ok: version=%d levels=%d achievements=%d\n", c.Version, len(c.Levels), len(c.Achievements))
		return
	}

	application, err := app.NewWithOptions(app.Options{WithoutHTTP: true})
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if path != "" {
		application.Cfg.CatalogPath = path
	}
	res, err := application.SeedCatalog(context.Background())
	if err != nil {
		fmt.Printf("seed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded levels=%d activities=%d achievements=%d\n", res.Levels, res.Activities, res.Achievements)
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path != "" {
		return catalog.Load(path)
	}
	return catalog.LoadFromEnv()
}
