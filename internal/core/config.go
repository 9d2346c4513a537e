package core

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"

	"github.com/jo-hoe/certshowcase/internal/backend/commandstructure"
	"github.com/jo-hoe/certshowcase/internal/certificates"
	"github.com/jo-hoe/certshowcase/internal/converter"
	"github.com/jo-hoe/certshowcase/internal/nlp"
	"github.com/jo-hoe/certshowcase/internal/wordcloud"
)

// CommandConfig represents a generic command configuration
type CommandConfig struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:",inline"`
}

type Database struct {
	Type             string `yaml:"type" validate:"required,oneof=sqlite redis"`
	ConnectionString string `yaml:"connectionString" validate:"required"`
}

// WordCloudConfig configures the index page cloud and on-demand renders.
type WordCloudConfig struct {
	// Source is a column of the data file or "certificate_text".
	Source     string `yaml:"source"`
	Method     string `yaml:"method"`
	OutputPath string `yaml:"outputPath"`
	Width      int    `yaml:"width" validate:"min=0"`
	Height     int    `yaml:"height" validate:"min=0"`
	MaxWords   int    `yaml:"maxWords" validate:"min=0"`
	Background string `yaml:"background"`
	Colormap   string `yaml:"colormap" validate:"omitempty,oneof=viridis plasma"`
	Mask       string `yaml:"mask"`
	FontPath   string `yaml:"fontPath"`
	Seed       int64  `yaml:"seed"`
	// Methods holds extractor parameters keyed by method name.
	Methods map[string]map[string]any `yaml:"methods"`
}

type Certificates struct {
	PDFDir      string          `yaml:"pdfDir"`
	OutputDir   string          `yaml:"outputDir"`
	Ghostscript string          `yaml:"ghostscript"`
	DPI         int             `yaml:"dpi" validate:"min=0,max=1200"`
	Concurrency int             `yaml:"concurrency" validate:"min=0,max=64"`
	Commands    []CommandConfig `yaml:"commands"`
}

type ServiceConfig struct {
	Port         int             `yaml:"port" validate:"min=0,max=65535"`
	LogLevel     string          `yaml:"logLevel" validate:"omitempty,oneof=debug info warn error"`
	LogFormat    string          `yaml:"logFormat" validate:"omitempty,oneof=text json"`
	DataPath     string          `yaml:"dataPath" validate:"required"`
	StaticDir    string          `yaml:"staticDir" validate:"required"`
	WordCloud    WordCloudConfig `yaml:"wordCloud"`
	Database     Database        `yaml:"database"`
	Certificates Certificates    `yaml:"certificates"`
}

// DefaultConfig is what an empty config file amounts to.
func DefaultConfig() *ServiceConfig {
	return &ServiceConfig{
		Port:      8000,
		LogLevel:  "info",
		LogFormat: "text",
		DataPath:  "certificates_info.txt",
		StaticDir: "static",
		WordCloud: WordCloudConfig{
			Source:     certificates.ColumnTitle,
			Method:     nlp.MethodSimple,
			OutputPath: wordcloud.DefaultOutputPath,
		},
		Database: Database{
			Type:             "sqlite",
			ConnectionString: ":memory:",
		},
		Certificates: Certificates{
			PDFDir:      "certificates",
			OutputDir:   "static/images/certificates",
			Ghostscript: converter.DefaultGhostscriptBinary,
			DPI:         converter.DefaultDPI,
			Concurrency: 2,
		},
	}
}

// LoadConfig loads configuration from the specified YAML file
func LoadConfig(configPath string) (*ServiceConfig, error) {
	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Parse YAML over the defaults
	config := DefaultConfig()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// Validate checks struct tags, the extraction method and the command chain.
func (config *ServiceConfig) Validate() error {
	if err := validator.New().Struct(config); err != nil {
		return err
	}
	if config.WordCloud.Method != "" && !nlp.DefaultRegistry.IsRegistered(config.WordCloud.Method) {
		return fmt.Errorf("%w: %s", nlp.ErrUnknownMethod, config.WordCloud.Method)
	}
	if _, err := parseColor(config.WordCloud.Background); err != nil {
		return err
	}

	// Validate commands
	if err := validateCommands(config.Certificates.Commands); err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}
	return nil
}

// validateCommands ensures all command configurations have required fields
func validateCommands(commands []CommandConfig) error {
	seenNames := make(map[string]bool)

	for i, cmd := range commands {
		// Validate name is not empty
		if cmd.Name == "" {
			return fmt.Errorf("command at index %d has empty name", i)
		}

		// Validate name is unique
		if seenNames[cmd.Name] {
			return fmt.Errorf("duplicate command name: %s", cmd.Name)
		}
		seenNames[cmd.Name] = true

		if !commandstructure.DefaultRegistry.IsRegistered(cmd.Name) {
			return fmt.Errorf("unknown command: %s", cmd.Name)
		}
	}

	return nil
}

// CommandConfigs converts the configured chain for the command invoker.
func (c Certificates) CommandConfigs() []commandstructure.CommandConfig {
	configs := make([]commandstructure.CommandConfig, len(c.Commands))
	for i, cmd := range c.Commands {
		configs[i] = commandstructure.CommandConfig{Name: cmd.Name, Params: cmd.Params}
	}
	return configs
}

// Options maps the configuration onto renderer options. Zero values keep
// the renderer defaults.
func (w WordCloudConfig) Options() (wordcloud.Options, error) {
	opts := wordcloud.DefaultOptions()
	if w.Width > 0 {
		opts.Width = w.Width
	}
	if w.Height > 0 {
		opts.Height = w.Height
	}
	if w.MaxWords > 0 {
		opts.MaxWords = w.MaxWords
	}
	if w.Colormap != "" {
		opts.Colormap = w.Colormap
	}
	background, err := parseColor(w.Background)
	if err != nil {
		return opts, err
	}
	if background != nil {
		opts.Background = background
	}
	opts.Mask = w.Mask
	opts.FontPath = w.FontPath
	opts.Seed = w.Seed
	return opts, opts.Validate()
}

// parseColor accepts "", "white", "black" or a #rrggbb value.
func parseColor(value string) (color.Color, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "":
		return nil, nil
	case "white":
		return color.White, nil
	case "black":
		return color.Black, nil
	}
	hex := strings.TrimPrefix(value, "#")
	if len(hex) != 6 {
		return nil, errors.New("background must be white, black or #rrggbb, got " + value)
	}
	rgb, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("failed to parse background %s: %w", value, err)
	}
	return color.RGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 255}, nil
}
