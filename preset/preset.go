package preset

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/Ashenafi-pixel/simple-roulette/wheel"
)

//go:embed schema/*.json
var schemaFS embed.FS

const (
	itemsSchemaURL  = "https://simple-roulette.app/schema/items.schema.json"
	presetSchemaURL = "https://simple-roulette.app/schema/preset.schema.json"
)

var (
	schemaOnce   sync.Once
	itemsSchema  *jsonschema.Schema
	presetSchema *jsonschema.Schema
	schemaErr    error
)

func compileSchemas() {
	c := jsonschema.NewCompiler()
	for url, name := range map[string]string{
		itemsSchemaURL:  "schema/items.schema.json",
		presetSchemaURL: "schema/preset.schema.json",
	} {
		raw, err := schemaFS.ReadFile(name)
		if err != nil {
			schemaErr = err
			return
		}
		if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
			schemaErr = fmt.Errorf("add schema %s: %w", name, err)
			return
		}
	}
	if itemsSchema, schemaErr = c.Compile(itemsSchemaURL); schemaErr != nil {
		return
	}
	presetSchema, schemaErr = c.Compile(presetSchemaURL)
}

// Preset is a named, reusable item list.
type Preset struct {
	Name  string       `json:"name"`
	Title string       `json:"title,omitempty"`
	Items []wheel.Item `json:"items"`
}

type itemDoc struct {
	Name   string `json:"name" yaml:"name"`
	Color  string `json:"color,omitempty" yaml:"color,omitempty"`
	Weight int    `json:"weight" yaml:"weight"`
}

type presetDoc struct {
	Name  string    `json:"name" yaml:"name"`
	Title string    `json:"title,omitempty" yaml:"title,omitempty"`
	Items []itemDoc `json:"items" yaml:"items"`
}

// Parse reads a YAML (or JSON) preset document and validates it.
func Parse(raw []byte) (Preset, error) {
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return Preset{}, fmt.Errorf("preset: %w", err)
	}
	if err := validate(presetSchemaOf, generic); err != nil {
		return Preset{}, err
	}
	var doc presetDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Preset{}, fmt.Errorf("preset: %w", err)
	}
	items, err := toItems(doc.Items)
	if err != nil {
		return Preset{}, err
	}
	return Preset{Name: doc.Name, Title: doc.Title, Items: items}, nil
}

// ParseItems validates and decodes a JSON item list.
func ParseItems(raw []byte) ([]wheel.Item, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("items: %w", err)
	}
	if err := validate(itemsSchemaOf, generic); err != nil {
		return nil, err
	}
	var docs []itemDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("items: %w", err)
	}
	return toItems(docs)
}

// Marshal renders p as YAML, the format Parse and the preset files use.
func Marshal(p Preset) ([]byte, error) {
	doc := presetDoc{Name: p.Name, Title: p.Title}
	for _, it := range p.Items {
		doc.Items = append(doc.Items, itemDoc{Name: it.Name, Color: it.Color.Hex(), Weight: it.Weight})
	}
	return yaml.Marshal(doc)
}

func toItems(docs []itemDoc) ([]wheel.Item, error) {
	items := make([]wheel.Item, len(docs))
	for i, d := range docs {
		color := wheel.Palette[i%len(wheel.Palette)]
		if d.Color != "" {
			c, err := wheel.ParseColor(d.Color)
			if err != nil {
				return nil, err
			}
			color = c
		}
		items[i] = wheel.Item{Name: d.Name, Color: color, Weight: d.Weight}
	}
	return items, nil
}

func itemsSchemaOf() *jsonschema.Schema  { return itemsSchema }
func presetSchemaOf() *jsonschema.Schema { return presetSchema }

// validate normalises v through JSON so YAML ints and maps look like decoded JSON.
func validate(schema func() *jsonschema.Schema, v any) error {
	schemaOnce.Do(compileSchemas)
	if schemaErr != nil {
		return fmt.Errorf("compile schema: %w", schemaErr)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("preset: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	if err := schema().Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
