package config

import (
	"fmt"

	"keygrid/internal/emit"
)

// TemplateConfig selects the row format. Name picks a built-in template;
// any non-empty field below overrides the built-in's value. An unknown
// Name is accepted as a custom template when Separator is set.
type TemplateConfig struct {
	Name       string `yaml:"name"`
	RowOpen    string `yaml:"row_open,omitempty"`
	RowClose   string `yaml:"row_close,omitempty"`
	Separator  string `yaml:"separator,omitempty"`
	Terminator string `yaml:"terminator,omitempty"`
}

// Resolve returns the emit.Template this config describes.
func (t TemplateConfig) Resolve() (emit.Template, error) {
	name := t.Name
	if name == "" {
		name = emit.QMK.Name
	}

	tmpl, err := emit.LookupTemplate(name)
	if err != nil {
		if t.Separator == "" {
			return emit.Template{}, fmt.Errorf("template: %w", err)
		}
		tmpl = emit.Template{Name: name}
	}

	if t.RowOpen != "" {
		tmpl.RowOpen = t.RowOpen
	}
	if t.RowClose != "" {
		tmpl.RowClose = t.RowClose
	}
	if t.Separator != "" {
		tmpl.Separator = t.Separator
	}
	if t.Terminator != "" {
		tmpl.Terminator = t.Terminator
	}
	return tmpl, nil
}
