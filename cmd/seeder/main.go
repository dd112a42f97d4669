package main

import (
	"encoding/csv"
	"fmt"
	"iter"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/colormatch"
	"github.com/poiesic/colormatch/core"
)

var (
	garments     = []string{"tee", "polo", "shirt", "hoodie", "sweater", "dress", "blouse", "jacket"}
	adjectives   = []string{"Classic", "Slim", "Relaxed", "Vintage", "Everyday", "Striped", "Washed", "Cropped"}
	compositions = []string{"cotton", "linen", "wool", "polyester", "viscose", "silk"}
	sleeves      = []string{"short", "long", "sleeveless", "three-quarter"}
	genders      = []core.GenderClass{core.GenderMan, core.GenderWoman, core.GenderBoy, core.GenderGirl, core.GenderUnknown}
)

// generateItems returns an iterator over n pseudo-random catalog items.
func generateItems(rng *rand.Rand, n int, coloredFraction float64, photoBase string) iter.Seq[*core.CatalogItem] {
	return func(yield func(*core.CatalogItem) bool) {
		for i := range n {
			id := fmt.Sprintf("SKU%06d", i+1)
			item := &core.CatalogItem{
				ID:          id,
				Title:       adjectives[rng.IntN(len(adjectives))] + " " + garments[rng.IntN(len(garments))],
				Gender:      genders[rng.IntN(len(genders))],
				Composition: compositions[rng.IntN(len(compositions))],
				Sleeve:      sleeves[rng.IntN(len(sleeves))],
				Photo:       photoBase + "/" + id + ".jpg",
				URL:         "https://shop.example.com/p/" + id,
			}
			if rng.Float64() < coloredFraction {
				item.Color = &core.ColorVector{R: rng.IntN(256), G: rng.IntN(256), B: rng.IntN(256)}
			}
			if !yield(item) {
				return
			}
		}
	}
}

func record(item *core.CatalogItem) []string {
	color := ""
	if item.HasColor() {
		color = item.Color.String()
	}
	return []string{item.ID, item.Title, string(item.Gender), item.Composition, item.Sleeve, item.Photo, item.URL, color}
}

func writeCatalog(path string, items iter.Seq[*core.CatalogItem]) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "title", "gender_id", "composition", "sleeve", "photo", "url", "dominant_color"}); err != nil {
		return 0, err
	}
	written := 0
	for item := range items {
		if err := w.Write(record(item)); err != nil {
			return written, err
		}
		written++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return written, err
	}
	return written, f.Close()
}

func main() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	app := &cli.App{
		Name:  "seeder",
		Usage: "Generate a fake catalog file for load testing",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "Number of catalog items to generate", Value: 1000},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Destination file", Value: "catalog.csv"},
			&cli.Uint64Flag{Name: "seed", Usage: "Random seed", Value: 1},
			&cli.Float64Flag{Name: "colored", Usage: "Fraction of items generated with a dominant color", Value: 0.5},
			&cli.StringFlag{Name: "photos", Usage: "Photo locator prefix", Value: "//cdn.example.com/photos"},
			&cli.StringFlag{Name: "db", Aliases: []string{"d"}, Usage: "Import the generated file into this catalog"},
		},
		Action: seed,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func seed(c *cli.Context) error {
	rng := rand.New(rand.NewPCG(c.Uint64("seed"), c.Uint64("seed")))
	output := c.String("out")

	items := generateItems(rng, c.Int("count"), c.Float64("colored"), c.String("photos"))
	written, err := writeCatalog(output, items)
	if err != nil {
		return err
	}
	slog.Info("generated catalog", "path", output, "items", written)

	if !c.IsSet("db") {
		return nil
	}

	catalog, err := colormatch.OpenCatalog(c.String("db"))
	if err != nil {
		return err
	}
	defer catalog.Close()

	job, err := catalog.ImportFrom(c.Context, output)
	if err != nil {
		return err
	}
	slog.Info("imported catalog", "job", strconv.FormatUint(job.ID, 10), "written", job.Written, "failed", job.Failed)
	return nil
}
