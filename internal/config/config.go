package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"keygrid/internal/emit"
	"keygrid/internal/matrix"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where commands look for a layout when --config is unset.
const DefaultPath = "keygrid.yaml"

// Config holds one keyboard layout and how to render it.
type Config struct {
	// Keyboard name, informational only
	Name string `yaml:"name"`

	Matrix   MatrixConfig   `yaml:"matrix"`
	Template TemplateConfig `yaml:"template"`

	// Strict rejects occupied entries that can never match a matrix cell.
	// When false they are carried through and silently ignored.
	Strict bool `yaml:"strict"`

	// Occupied lists the labels of physically wired matrix positions.
	Occupied []string `yaml:"occupied"`

	Logging LoggingConfig `yaml:"logging"`
}

// MatrixConfig sizes the key matrix and names its cells.
type MatrixConfig struct {
	Rows        int    `yaml:"rows"`
	Cols        int    `yaml:"cols"`
	Prefix      string `yaml:"prefix"`
	Placeholder string `yaml:"placeholder"`
}

// sculptOccupied is every wired position of the Microsoft Sculpt wired
// conversion, in the order they appear on the board.
var sculptOccupied = []string{
	"k4D", "k7C", "k7B", "k1B", "k4B", "k1A", "k1F", "k79", "k77", "k75", "k78", "k73", "k13", "k71", "k31", "k01", "k23",
	"k7D", "k0D", "k0C", "k2D", "k1D", "k7A", "k7F", "k09", "k07", "k05", "k04", "k15", "k74", "k08", "k03", "k21",
	"k0A", "k0B", "k1C", "k2B", "k2A", "k2F", "k19", "k29", "k27", "k25", "k24", "k14", "k17", "k38", "k51",
	"k2C", "k3D", "k4C", "k3B", "k3A", "k4A", "k49", "k39", "k37", "k35", "k34", "k45", "k33", "k18", "k11",
	"k5E", "k5D", "k5C", "k5B", "k5A", "k6A", "k69", "k59", "k57", "k55", "k44", "k52", "k63", "k53",
	"k6H", "k3F", "k4G", "k6B", "k68", "k46", "k43", "k60", "k48", "k64", "k61",
}

// DefaultConfig returns the Sculpt conversion layout.
func DefaultConfig() *Config {
	return &Config{
		Name: "sculpt",
		Matrix: MatrixConfig{
			Rows:        matrix.DefaultRows,
			Cols:        matrix.DefaultCols,
			Prefix:      matrix.DefaultPrefix,
			Placeholder: matrix.Placeholder,
		},
		Template: TemplateConfig{Name: emit.QMK.Name},
		Strict:   true,
		Occupied: append([]string(nil), sculptOccupied...),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("KEYGRID_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if name := os.Getenv("KEYGRID_TEMPLATE"); name != "" {
		c.Template = TemplateConfig{Name: name}
	}
	if placeholder := os.Getenv("KEYGRID_PLACEHOLDER"); placeholder != "" {
		c.Matrix.Placeholder = placeholder
	}
}

// Validate checks the configuration. Occupied entries are only checked
// when Strict is set.
func (c *Config) Validate() error {
	var errs []error

	if err := matrix.CheckDimensions(c.Matrix.Rows, c.Matrix.Cols); err != nil {
		errs = append(errs, err)
	}
	if c.Matrix.Prefix == "" {
		errs = append(errs, errors.New("matrix.prefix is required"))
	}
	if c.Matrix.Placeholder == "" {
		errs = append(errs, errors.New("matrix.placeholder is required"))
	}
	if _, err := c.Template.Resolve(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 && c.Strict {
		if err := c.ValidateOccupied(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ValidateOccupied reports every occupied entry that is malformed or lies
// outside the matrix, regardless of Strict.
func (c *Config) ValidateOccupied() error {
	if c.Matrix.Prefix == "" {
		return errors.New("matrix.prefix is required")
	}
	return matrix.Validate(c.OccupiedSet(), c.Matrix.Prefix, c.Matrix.Rows, c.Matrix.Cols)
}

// OccupiedSet returns the occupied labels as an immutable set.
func (c *Config) OccupiedSet() matrix.Set {
	return matrix.NewSet(c.Occupied...)
}

// EmitterOptions converts the config into emitter options.
func (c *Config) EmitterOptions() (emit.Options, error) {
	tmpl, err := c.Template.Resolve()
	if err != nil {
		return emit.Options{}, err
	}
	return emit.Options{
		Rows:        c.Matrix.Rows,
		Cols:        c.Matrix.Cols,
		Prefix:      c.Matrix.Prefix,
		Placeholder: c.Matrix.Placeholder,
		Template:    tmpl,
	}, nil
}
