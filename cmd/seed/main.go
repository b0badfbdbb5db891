package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"accountbook/internal/cache"
	"accountbook/internal/config"
	"accountbook/internal/db"
	applog "accountbook/internal/log"
	"accountbook/internal/model"
	"accountbook/internal/repository"
	"accountbook/internal/service"
)

// SeedCategory is one entry of a category catalogue file.
type SeedCategory struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Icon string `json:"icon"`
}

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	source := fs.String("source", "", "path or http(s) URL of a JSON category list; defaults to the built-in catalogue")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: applog.ComponentApp,
		Output:    stdout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	categories := db.DefaultCategories()
	if *source != "" {
		logger.Info("loading categories", "source", *source)
		entries, err := loadCategories(ctx, *source)
		if err != nil {
			return err
		}
		var skipped int
		categories, skipped = toModels(entries)
		if skipped > 0 {
			logger.Warn("skipped invalid categories", "count", skipped)
		}
	}

	gormDB, err := db.Open(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close(gormDB)

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, logger)
	defer cacheClient.Close()

	svc := service.NewCategoryService(repository.NewCategoryRepository(gormDB), cacheClient, logger)
	if err := svc.Import(ctx, categories); err != nil {
		return fmt.Errorf("import categories: %w", err)
	}

	fmt.Fprintf(stdout, "seeded %d categories\n", len(categories))
	return nil
}

// loadCategories reads a catalogue from a local file or an http(s) URL.
func loadCategories(ctx context.Context, source string) ([]SeedCategory, error) {
	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch categories: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("category source returned status code: %d", resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		r = f
	}
	defer r.Close()

	var entries []SeedCategory
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return entries, nil
}

// toModels drops entries without a name or with an unknown type.
func toModels(entries []SeedCategory) ([]model.Category, int) {
	categories := make([]model.Category, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		typ := model.TransactionType(strings.TrimSpace(e.Type))
		name := strings.TrimSpace(e.Name)
		if name == "" || !typ.Valid() {
			skipped++
			continue
		}
		categories = append(categories, model.Category{Name: name, Type: typ, Icon: e.Icon})
	}
	return categories, skipped
}
