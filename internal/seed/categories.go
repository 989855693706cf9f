// Package seed loads reference data such as the category list.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"evnt/internal/store"
	"evnt/models"

	"gopkg.in/yaml.v3"
)

type categoryFile struct {
	Categories []models.Category `yaml:"categories"`
}

// ParseCategories reads a YAML document of the form
//
//	categories:
//	  - name: Music
//	  - name: Art & Culture
//	    slug: art
func ParseCategories(r io.Reader) ([]models.Category, error) {
	var file categoryFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse categories: %w", err)
	}

	out := make([]models.Category, 0, len(file.Categories))
	for i, c := range file.Categories {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, fmt.Errorf("parse categories: entry %d has no name", i+1)
		}
		out = append(out, c)
	}
	return out, nil
}

// Categories upserts every category by slug and returns how many were written.
func Categories(ctx context.Context, s store.Store, categories []models.Category) (int, error) {
	for _, c := range categories {
		saved, err := s.UpsertCategory(ctx, c)
		if err != nil {
			return 0, err
		}
		slog.Info("category seeded", "id", saved.ID, "slug", saved.Slug)
	}
	return len(categories), nil
}
