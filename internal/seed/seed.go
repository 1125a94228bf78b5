// Package seed imports the tool catalogue from a YAML file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/SergeyParamoshkin/toolrank/internal/model"
	"github.com/SergeyParamoshkin/toolrank/internal/store"
)

type Company struct {
	Name    string `yaml:"name"`
	Slug    string `yaml:"slug"`
	Website string `yaml:"website"`
}

type Tool struct {
	Name     string         `yaml:"name"`
	Slug     string         `yaml:"slug"`
	Category string         `yaml:"category"`
	Status   string         `yaml:"status"`
	Company  string         `yaml:"company"`
	Info     model.ToolInfo `yaml:"info"`
	Delta    model.Scores   `yaml:"delta"`
}

// File is the catalogue document.
type File struct {
	Companies []Company `yaml:"companies"`
	Tools     []Tool    `yaml:"tools"`
}

// Parse decodes and validates a catalogue document. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}

	return &f, f.validate()
}

func (f *File) validate() error {
	var err error
	for i, c := range f.Companies {
		if strings.TrimSpace(c.Name) == "" {
			err = multierr.Append(err, fmt.Errorf("companies[%d]: name is required", i))
		}
	}
	for i, t := range f.Tools {
		if strings.TrimSpace(t.Name) == "" {
			err = multierr.Append(err, fmt.Errorf("tools[%d]: name is required", i))
		}
		if t.Category == "" {
			err = multierr.Append(err, fmt.Errorf("tools[%d]: category is required", i))
		}
		for factor := range t.Delta {
			if !factor.Valid() {
				err = multierr.Append(err, fmt.Errorf("tools[%d]: unknown delta factor %q", i, factor))
			}
		}
	}

	return err
}

// Result counts what Import did.
type Result struct {
	CompaniesCreated int `json:"companiesCreated"`
	ToolsCreated     int `json:"toolsCreated"`
	ToolsUpdated     int `json:"toolsUpdated"`
}

// Import upserts the catalogue in one transaction. Companies are matched by
// name or slug, tools by slug.
func Import(ctx context.Context, st *store.Store, f *File) (Result, error) {
	var res Result

	err := st.WithTx(ctx, func(tx *store.Store) error {
		for _, c := range f.Companies {
			key := c.Slug
			if key == "" {
				key = c.Name
			}
			_, err := tx.GetCompany(ctx, key)
			switch {
			case err == nil:
				continue
			case !errors.Is(err, store.ErrNotFound):
				return err
			}
			if err := tx.CreateCompany(ctx, &model.Company{Name: c.Name, Slug: c.Slug, Website: c.Website}); err != nil {
				return err
			}
			res.CompaniesCreated++
		}

		for _, t := range f.Tools {
			created, err := upsertTool(ctx, tx, t)
			if err != nil {
				return fmt.Errorf("tool %q: %w", t.Name, err)
			}
			if created {
				res.ToolsCreated++
			} else {
				res.ToolsUpdated++
			}
		}

		return nil
	})

	return res, err
}

func upsertTool(ctx context.Context, tx *store.Store, t Tool) (bool, error) {
	tool := &model.Tool{
		Name:     t.Name,
		Slug:     t.Slug,
		Category: t.Category,
		Status:   t.Status,
		Info:     t.Info,
		Delta:    t.Delta,
	}
	if tool.Slug == "" {
		tool.Slug = store.Slugify(t.Name)
	}
	if tool.Status == "" {
		tool.Status = model.StatusActive
	}

	company := t.Company
	if company == "" {
		company = t.Info.Company
	}
	if company != "" {
		c, err := tx.GetCompany(ctx, company)
		switch {
		case err == nil:
			tool.CompanyID = c.ID
		case !errors.Is(err, store.ErrNotFound):
			return false, err
		}
		if tool.Info.Company == "" {
			tool.Info.Company = company
		}
	}

	existing, err := tx.GetToolBySlug(ctx, tool.Slug)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return true, tx.CreateTool(ctx, tool)
	case err != nil:
		return false, err
	}

	tool.ID, tool.CreatedAt = existing.ID, existing.CreatedAt

	return false, tx.UpdateTool(ctx, tool)
}
