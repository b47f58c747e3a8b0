package store

import (
	"context"
	"fmt"
	"os"

	"github.com/serroba/maison-counter/internal/tracking"
	"gopkg.in/yaml.v3"
)

// Seeder writes rows that are normally created by the admin tooling.
type Seeder interface {
	SaveLink(ctx context.Context, link *tracking.TrackedLink) error
	SaveContent(ctx context.Context, item *tracking.ContentItem) error
	AddProfile(ctx context.Context, id string) error
}

// Fixtures is the YAML layout used to seed development stores.
//
//	links:
//	  - slug: silk-blazer
//	    destination: https://store.example/p/123
//	    clicks: 5
//	posts:
//	  - id: 3f0c...
//	    views: 10
//	profiles: [alice, bob]
type Fixtures struct {
	Links []struct {
		Slug        string `yaml:"slug"`
		Destination string `yaml:"destination"`
		Clicks      int64  `yaml:"clicks"`
	} `yaml:"links"`
	Posts []struct {
		ID    string `yaml:"id"`
		Views int64  `yaml:"views"`
	} `yaml:"posts"`
	Profiles []string `yaml:"profiles"`
}

// LoadFixtures reads a fixtures file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}

	return ParseFixtures(data)
}

// ParseFixtures decodes fixtures from YAML.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	for _, l := range f.Links {
		if _, err := tracking.ParseSlug(l.Slug); err != nil {
			return nil, fmt.Errorf("fixture link %q: %w", l.Slug, err)
		}

		if l.Clicks < 0 {
			return nil, fmt.Errorf("fixture link %q: negative click count", l.Slug)
		}
	}

	for _, p := range f.Posts {
		if _, err := tracking.ParseContentID(p.ID); err != nil {
			return nil, fmt.Errorf("fixture post %q: %w", p.ID, err)
		}

		if p.Views < 0 {
			return nil, fmt.Errorf("fixture post %q: negative view count", p.ID)
		}
	}

	return &f, nil
}

// Seed writes the fixtures through the seeder.
func Seed(ctx context.Context, s Seeder, f *Fixtures) error {
	for _, l := range f.Links {
		link := &tracking.TrackedLink{
			Slug:        tracking.Slug(l.Slug),
			Destination: l.Destination,
			ClickCount:  l.Clicks,
		}
		if err := s.SaveLink(ctx, link); err != nil {
			return fmt.Errorf("seed link %q: %w", l.Slug, err)
		}
	}

	for _, p := range f.Posts {
		item := &tracking.ContentItem{ID: tracking.ContentID(p.ID), ViewCount: p.Views}
		if err := s.SaveContent(ctx, item); err != nil {
			return fmt.Errorf("seed post %q: %w", p.ID, err)
		}
	}

	for _, id := range f.Profiles {
		if err := s.AddProfile(ctx, id); err != nil {
			return fmt.Errorf("seed profile %q: %w", id, err)
		}
	}

	return nil
}
