// Package commandstructure defines the image post-processing commands that
// run on rasterized certificates, the registry that creates them from
// configuration and the invoker that chains them.
package commandstructure

// Command transforms encoded image bytes.
type Command interface {
	Name() string
	Execute(imageData []byte) ([]byte, error)
}

// CommandFactory is a function type that creates a command from configuration parameters
type CommandFactory func(params map[string]any) (Command, error)

// CommandConfig represents a command configuration with name and parameters
type CommandConfig struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}
