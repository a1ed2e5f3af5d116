package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/code4lm/internal/utils"
)

// LoadOptions locates the configuration files of one invocation.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds defaults read from configuration files.
type ApplicationConfiguration struct {
	Merge MergeConfiguration `mapstructure:"merge" yaml:"merge"`
	MCP   MCPConfiguration   `mapstructure:"mcp" yaml:"mcp"`
}

// MergeConfiguration defines options shared by the merge, scan and fetch commands.
type MergeConfiguration struct {
	Path         string             `mapstructure:"path" yaml:"path,omitempty"`
	Output       string             `mapstructure:"output" yaml:"output,omitempty"`
	Extensions   []string           `mapstructure:"extensions" yaml:"extensions,omitempty"`
	Exclude      []string           `mapstructure:"exclude" yaml:"exclude"`
	ExcludeFiles []string           `mapstructure:"exclude_files" yaml:"exclude_files"`
	UseGitignore *bool              `mapstructure:"use_gitignore" yaml:"use_gitignore,omitempty"`
	DryRun       *bool              `mapstructure:"dry_run" yaml:"dry_run,omitempty"`
	Copy         *bool              `mapstructure:"copy" yaml:"copy,omitempty"`
	Tokens       TokenConfiguration `mapstructure:"tokens" yaml:"tokens"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled" yaml:"enabled,omitempty"`
	Model   string `mapstructure:"model" yaml:"model,omitempty"`
}

// MCPConfiguration configures the tool server.
type MCPConfiguration struct {
	Address string `mapstructure:"address" yaml:"address,omitempty"`
}

const (
	workingDirectoryErrorFormat    = "determine working directory: %w"
	homeDirectoryErrorFormat       = "resolve home directory: %w"
	missingConfigurationFormat     = "configuration file %s: %w"
	statConfigurationErrorFormat   = "stat configuration %s: %w"
	directoryConfigurationFormat   = "configuration path %s is a directory"
	readConfigurationErrorFormat   = "read configuration from %s: %w"
	decodeConfigurationErrorFormat = "decode configuration from %s: %w"
)

// configurationLayer is one file consulted while loading; a required layer must exist.
type configurationLayer struct {
	path     string
	required bool
}

// GlobalConfigurationPath returns the per-user configuration file under the home directory.
func GlobalConfigurationPath() (string, error) {
	homeDirectory, homeError := os.UserHomeDir()
	if homeError != nil {
		return "", fmt.Errorf(homeDirectoryErrorFormat, homeError)
	}
	return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName), nil
}

// LoadApplicationConfiguration reads the global file and then the local or explicit file.
// Each later layer overrides the earlier ones field by field; exclude lists accumulate.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	layers, layerError := configurationLayers(options)
	if layerError != nil {
		return ApplicationConfiguration{}, layerError
	}
	var combined ApplicationConfiguration
	for _, layer := range layers {
		layerConfiguration, readError := readConfigurationLayer(layer)
		if readError != nil {
			return ApplicationConfiguration{}, readError
		}
		combined = combined.Overlay(layerConfiguration)
	}
	combined.Merge.Exclude = utils.SanitizeList(combined.Merge.Exclude)
	combined.Merge.ExcludeFiles = utils.SanitizeList(combined.Merge.ExcludeFiles)
	return combined, nil
}

// configurationLayers lists the files to consult in precedence order, lowest first.
// A missing home directory only drops the global layer.
func configurationLayers(options LoadOptions) ([]configurationLayer, error) {
	baseDirectory := options.WorkingDirectory
	if baseDirectory == "" {
		currentDirectory, currentError := os.Getwd()
		if currentError != nil {
			return nil, fmt.Errorf(workingDirectoryErrorFormat, currentError)
		}
		baseDirectory = currentDirectory
	}
	var layers []configurationLayer
	if globalPath, globalError := GlobalConfigurationPath(); globalError == nil {
		layers = append(layers, configurationLayer{path: globalPath})
	}
	switch {
	case options.ExplicitFilePath == "":
		layers = append(layers, configurationLayer{path: filepath.Join(baseDirectory, utils.ConfigFileName)})
	case filepath.IsAbs(options.ExplicitFilePath):
		layers = append(layers, configurationLayer{path: options.ExplicitFilePath, required: true})
	default:
		layers = append(layers, configurationLayer{path: filepath.Join(baseDirectory, options.ExplicitFilePath), required: true})
	}
	return layers, nil
}

// readConfigurationLayer decodes one YAML file through viper. Optional missing files decode as empty.
func readConfigurationLayer(layer configurationLayer) (ApplicationConfiguration, error) {
	fileInfo, statError := os.Stat(layer.path)
	switch {
	case statError == nil && fileInfo.IsDir():
		return ApplicationConfiguration{}, fmt.Errorf(directoryConfigurationFormat, layer.path)
	case errors.Is(statError, fs.ErrNotExist) && !layer.required:
		return ApplicationConfiguration{}, nil
	case errors.Is(statError, fs.ErrNotExist):
		return ApplicationConfiguration{}, fmt.Errorf(missingConfigurationFormat, layer.path, statError)
	case statError != nil:
		return ApplicationConfiguration{}, fmt.Errorf(statConfigurationErrorFormat, layer.path, statError)
	}

	fileReader := viper.New()
	fileReader.SetConfigFile(layer.path)
	if readError := fileReader.ReadInConfig(); readError != nil {
		return ApplicationConfiguration{}, fmt.Errorf(readConfigurationErrorFormat, layer.path, readError)
	}
	var decoded ApplicationConfiguration
	if decodeError := fileReader.Unmarshal(&decoded); decodeError != nil {
		return ApplicationConfiguration{}, fmt.Errorf(decodeConfigurationErrorFormat, layer.path, decodeError)
	}
	return decoded, nil
}

// Overlay returns base with every value set in layer applied on top.
func (base ApplicationConfiguration) Overlay(layer ApplicationConfiguration) ApplicationConfiguration {
	base.Merge = base.Merge.overlay(layer.Merge)
	if layer.MCP.Address != "" {
		base.MCP.Address = layer.MCP.Address
	}
	return base
}

// overlay applies the scalars set in layer and appends its exclude names to base's.
func (base MergeConfiguration) overlay(layer MergeConfiguration) MergeConfiguration {
	base.Path = firstSet(layer.Path, base.Path)
	base.Output = firstSet(layer.Output, base.Output)
	if layer.Extensions != nil {
		base.Extensions = append([]string{}, layer.Extensions...)
	}
	base.Exclude = unionNames(base.Exclude, layer.Exclude)
	base.ExcludeFiles = unionNames(base.ExcludeFiles, layer.ExcludeFiles)
	base.UseGitignore = overrideFlag(base.UseGitignore, layer.UseGitignore)
	base.DryRun = overrideFlag(base.DryRun, layer.DryRun)
	base.Copy = overrideFlag(base.Copy, layer.Copy)
	base.Tokens.Enabled = overrideFlag(base.Tokens.Enabled, layer.Tokens.Enabled)
	base.Tokens.Model = firstSet(layer.Tokens.Model, base.Tokens.Model)
	return base
}

func firstSet(preferred string, fallback string) string {
	if preferred != "" {
		return preferred
	}
	return fallback
}

func unionNames(existing []string, added []string) []string {
	if len(added) == 0 {
		return existing
	}
	return utils.DeduplicateStrings(append(append([]string{}, existing...), added...))
}

func overrideFlag(current *bool, layer *bool) *bool {
	if layer == nil {
		return current
	}
	return boolPointer(*layer)
}

func boolPointer(value bool) *bool {
	return &value
}
