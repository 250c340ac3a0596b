// Package dataset describes the desired end state of the menu tables. The
// default dataset is embedded; an alternative YAML file can replace it.
package dataset

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/menu.yaml
var defaultYAML []byte

// Category is a category as written in the dataset.
type Category struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Customization is an add-on as written in the dataset. Price is already in
// minor units.
type Customization struct {
	Name  string `yaml:"name"`
	Price int64  `yaml:"price"`
	Type  string `yaml:"type"`
}

// MenuItem is a dish as written in the dataset. Price is in major units and
// the category and customizations are referenced by name.
type MenuItem struct {
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	ImageURL       string   `yaml:"image_url"`
	Price          float64  `yaml:"price"`
	Rating         float64  `yaml:"rating"`
	Calories       int64    `yaml:"calories"`
	Protein        int64    `yaml:"protein"`
	CategoryName   string   `yaml:"category_name"`
	Customizations []string `yaml:"customizations"`
}

// Dataset is the ordered content the reseed recreates.
type Dataset struct {
	Categories     []Category      `yaml:"categories"`
	Customizations []Customization `yaml:"customizations"`
	Menu           []MenuItem      `yaml:"menu"`
}

// Default returns the embedded dataset.
func Default() (*Dataset, error) {
	ds, err := Parse(bytes.NewReader(defaultYAML))
	if err != nil {
		return nil, fmt.Errorf("embedded dataset: %w", err)
	}
	return ds, nil
}

// Load reads a dataset file. An empty path selects the embedded dataset.
func Load(path string) (*Dataset, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	ds, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return ds, nil
}

// Parse decodes and validates a YAML dataset. Unknown keys are rejected.
func Parse(r io.Reader) (*Dataset, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate rejects entries that could never be stored. Out-of-range ratings
// and unresolvable references are allowed; the reseed clamps or skips them.
func (d *Dataset) Validate() error {
	var errs []error
	for i, c := range d.Categories {
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("categories[%d]: name is required", i))
		}
	}
	for i, c := range d.Customizations {
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("customizations[%d]: name is required", i))
		}
		if c.Price < 0 {
			errs = append(errs, fmt.Errorf("customizations[%d] %q: price is negative", i, c.Name))
		}
	}
	for i, m := range d.Menu {
		if m.Name == "" {
			errs = append(errs, fmt.Errorf("menu[%d]: name is required", i))
		}
		if m.Price < 0 || math.IsNaN(m.Price) || math.IsInf(m.Price, 0) {
			errs = append(errs, fmt.Errorf("menu[%d] %q: invalid price %v", i, m.Name, m.Price))
		}
		if m.Calories < 0 || m.Protein < 0 {
			errs = append(errs, fmt.Errorf("menu[%d] %q: nutrition values must be non-negative", i, m.Name))
		}
	}
	return errors.Join(errs...)
}
