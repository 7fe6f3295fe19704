package catalog

import (
	_ "embed"
	"fmt"
	"html/template"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vyrodovalexey/aura-storefront/internal/model"
)

//go:embed featured.yaml
var defaultFeatured []byte

// Featured is a product shown on the home page.
type Featured struct {
	Name        string          `yaml:"name"`
	Price       decimal.Decimal `yaml:"-"`
	RawPrice    string          `yaml:"price"`
	Image       string          `yaml:"image"`
	Description string          `yaml:"description"`
}

// Product maps the featured entry to the product handed to the cart.
func (f Featured) Product() model.Product {
	return model.Product{Name: f.Name, Price: f.Price, Image: f.Image}
}

// DescriptionHTML renders the description as sanitized Markdown.
func (f Featured) DescriptionHTML() template.HTML {
	return RenderDescription(f.Description)
}

type featuredFile struct {
	Products []Featured `yaml:"products"`
}

// LoadFeatured reads featured products from the YAML file at path, or the
// built-in list when path is empty.
func LoadFeatured(path string) ([]Featured, error) {
	data := defaultFeatured
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read featured products: %w", err)
		}
		data = b
	}
	return ParseFeatured(data)
}

// ParseFeatured decodes a featured products document. Every product must
// be valid.
func ParseFeatured(data []byte) ([]Featured, error) {
	var file featuredFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse featured products: %w", err)
	}

	for i := range file.Products {
		f := &file.Products[i]
		f.Name = CleanTitle(f.Name)

		price, err := decimal.NewFromString(f.RawPrice)
		if err != nil {
			return nil, fmt.Errorf("featured product %d (%s): price %q: %w", i, f.Name, f.RawPrice, err)
		}
		f.Price = price

		if err := f.Product().Validate(); err != nil {
			return nil, fmt.Errorf("featured product %d (%s): %w", i, f.Name, err)
		}
	}
	return file.Products, nil
}
