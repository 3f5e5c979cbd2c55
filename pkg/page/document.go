package page

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-islands/pkg/adapters/pongo"
	"github.com/goliatone/go-islands/pkg/component"
	"github.com/goliatone/go-islands/pkg/hydrate"
)

// Document is a page description loaded from YAML or JSON.
type Document struct {
	Title  string         `json:"title" yaml:"title"`
	Lang   string         `json:"lang" yaml:"lang"`
	Head   []string       `json:"head" yaml:"head"`
	Blocks []BlockSpec    `json:"blocks" yaml:"blocks"`
	Data   map[string]any `json:"data" yaml:"data"`
}

// BlockSpec is either literal markup or a component reference.
type BlockSpec struct {
	HTML      string        `json:"html,omitempty" yaml:"html,omitempty"`
	Component *ComponentRef `json:"component,omitempty" yaml:"component,omitempty"`
}

// ComponentRef names a component and how to embed it. Exactly one of Tag,
// Template and Inline is set.
type ComponentRef struct {
	Tag         string         `json:"tag,omitempty" yaml:"tag,omitempty"`
	Template    string         `json:"template,omitempty" yaml:"template,omitempty"`
	Inline      string         `json:"inline,omitempty" yaml:"inline,omitempty"`
	DisplayName string         `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Hydrate     string         `json:"hydrate,omitempty" yaml:"hydrate,omitempty"`
	URL         string         `json:"url,omitempty" yaml:"url,omitempty"`
	Export      string         `json:"export,omitempty" yaml:"export,omitempty"`
	Namespace   bool           `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Props       map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
	Children    []string       `json:"children,omitempty" yaml:"children,omitempty"`
}

// LoadDocument reads a page document from disk.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("page: read %s: %w", path, err)
	}
	return ParseDocument(data, path)
}

// LoadDocumentFS reads a page document from fsys.
func LoadDocumentFS(fsys fs.FS, path string) (*Document, error) {
	if fsys == nil {
		return nil, errors.New("page: filesystem is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("page: read %s: %w", path, err)
	}
	return ParseDocument(data, path)
}

// ParseDocument decodes JSON or YAML. source is only used in error messages.
func ParseDocument(data []byte, source string) (*Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("page: file %s is empty", source)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = Document{}
		if yamlErr := yaml.Unmarshal(data, &doc); yamlErr != nil {
			return nil, fmt.Errorf("page: parse %s: %w", source, yamlErr)
		}
	}
	return &doc, nil
}

// ToBlocks converts the document into renderable blocks.
func (d *Document) ToBlocks() ([]Block, error) {
	blocks := make([]Block, 0, len(d.Blocks))
	for i, spec := range d.Blocks {
		block, err := spec.block()
		if err != nil {
			return nil, fmt.Errorf("page: block %d: %w", i, err)
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func (s BlockSpec) block() (Block, error) {
	if s.Component == nil {
		return Block{HTML: s.HTML}, nil
	}
	if s.HTML != "" {
		return Block{}, errors.New("html and component are mutually exclusive")
	}
	return s.Component.occurrence()
}

func (c *ComponentRef) occurrence() (Block, error) {
	value, err := c.value()
	if err != nil {
		return Block{}, err
	}
	mode, err := hydrate.ParseMode(c.Hydrate)
	if err != nil {
		return Block{}, err
	}
	return Block{Component: &Occurrence{
		Component: value,
		Props: component.Props{
			DisplayName:  c.DisplayName,
			Hydrate:      mode,
			ComponentURL: c.URL,
			ComponentExport: hydrate.Export{
				Value:       c.Export,
				IsNamespace: c.Namespace,
			},
		},
		Values:   c.Props,
		Children: c.Children,
	}}, nil
}

func (c *ComponentRef) value() (any, error) {
	var (
		value any
		set   int
	)
	if c.Tag != "" {
		value = c.Tag
		set++
	}
	if c.Template != "" {
		value = pongo.Template{Name: c.Template}
		set++
	}
	if c.Inline != "" {
		value = pongo.Inline(c.Inline)
		set++
	}
	if set != 1 {
		return nil, errors.New("component needs exactly one of tag, template or inline")
	}
	return value, nil
}
