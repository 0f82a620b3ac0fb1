package emit

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownTemplate = errors.New("unknown template")

// Template describes how one row of tokens is rendered:
// RowOpen + tokens joined by Separator + RowClose + Terminator.
type Template struct {
	Name       string
	RowOpen    string
	RowClose   string
	Separator  string
	Terminator string
}

// QMK renders rows for a multi-line #define LAYOUT macro body.
var QMK = Template{
	Name:       "qmk",
	RowOpen:    "{",
	RowClose:   "}",
	Separator:  ", ",
	Terminator: ", \\",
}

// Plain renders rows as a brace-initializer list with no line continuation.
var Plain = Template{
	Name:       "plain",
	RowOpen:    "{",
	RowClose:   "}",
	Separator:  ", ",
	Terminator: ",",
}

var builtin = map[string]Template{
	QMK.Name:   QMK,
	Plain.Name: Plain,
}

// LookupTemplate returns a built-in template by name.
func LookupTemplate(name string) (Template, error) {
	t, ok := builtin[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownTemplate, name, TemplateNames())
	}
	return t, nil
}

// TemplateNames lists the built-in templates in sorted order.
func TemplateNames() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
