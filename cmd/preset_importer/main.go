package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	roulette "github.com/Ashenafi-pixel/simple-roulette"
	"github.com/Ashenafi-pixel/simple-roulette/preset"
)

func main() {
	file := flag.String("file", "", "Path to a preset YAML file")
	dir := flag.String("dir", "", "Directory of preset YAML files (imports every *.yaml / *.yml)")
	dryRun := flag.Bool("dry-run", false, "Validate only; do not touch the database")
	flag.Parse()

	if (*file == "") == (*dir == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -file or -dir is required")
		os.Exit(1)
	}

	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	if err := run(context.Background(), *file, *dir, *dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, file, dir string, dryRun bool) error {
	paths, err := presetPaths(file, dir)
	if err != nil {
		return err
	}
	presets := make([]preset.Preset, 0, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		ps, err := preset.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if ps.Name == preset.DefaultName {
			return fmt.Errorf("%s: the default preset is built in", p)
		}
		presets = append(presets, ps)
	}
	if dryRun {
		for _, ps := range presets {
			fmt.Printf("Valid preset %q (%d items)\n", ps.Name, len(ps.Items))
		}
		return nil
	}

	db, err := roulette.GetDB()
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if db == nil {
		return fmt.Errorf("DATABASE_URL is not set; cannot connect to DB")
	}
	defer db.Close()

	for _, ps := range presets {
		if err := preset.Upsert(ctx, db, ps); err != nil {
			return err
		}
		fmt.Printf("Imported preset %q (%d items)\n", ps.Name, len(ps.Items))
	}
	return nil
}

func presetPaths(file, dir string) ([]string, error) {
	if file != "" {
		return []string{file}, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no preset files in %s", dir)
	}
	return out, nil
}
