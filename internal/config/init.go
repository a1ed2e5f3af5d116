package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/temirov/code4lm/internal/utils"
)

// InitTarget selects which configuration file init writes.
type InitTarget string

const (
	// InitTargetLocal is config.yaml in the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal is config.yaml under ~/.code4lm.
	InitTargetGlobal InitTarget = "global"

	defaultMCPAddress          = "127.0.0.1:0"
	configurationDirectoryMode = 0o755
	configurationFileMode      = 0o600

	unsupportedTargetFormat     = "unsupported init target %q"
	existingConfigurationFormat = "configuration file already exists at %s"
	inspectDestinationFormat    = "inspect configuration path %s: %w"
	createDirectoryErrorFormat  = "create configuration directory %s: %w"
	encodeDefaultsErrorFormat   = "encode default configuration: %w"
	writeConfigurationFormat    = "write configuration to %s: %w"
)

// InitOptions describes one init request.
type InitOptions struct {
	Target InitTarget
	// Force replaces an existing file.
	Force            bool
	WorkingDirectory string
}

// DefaultApplicationConfiguration returns the configuration written by InitializeConfiguration.
func DefaultApplicationConfiguration() ApplicationConfiguration {
	return ApplicationConfiguration{
		Merge: MergeConfiguration{
			Path:         DefaultRootPath(),
			Output:       DefaultOutputTarget(),
			Extensions:   DefaultExtensions(),
			Exclude:      []string{},
			ExcludeFiles: []string{},
			UseGitignore: boolPointer(true),
			DryRun:       boolPointer(false),
			Copy:         boolPointer(false),
			Tokens: TokenConfiguration{
				Enabled: boolPointer(false),
				Model:   DefaultTokenModel(),
			},
		},
		MCP: MCPConfiguration{Address: defaultMCPAddress},
	}
}

// InitializeConfiguration writes DefaultApplicationConfiguration as YAML and returns the written path.
// An existing file is kept unless Force is set.
func InitializeConfiguration(options InitOptions) (string, error) {
	destinationPath, destinationError := initDestination(options)
	if destinationError != nil {
		return "", destinationError
	}

	_, statError := os.Stat(destinationPath)
	switch {
	case statError == nil && !options.Force:
		return "", fmt.Errorf(existingConfigurationFormat, destinationPath)
	case statError != nil && !errors.Is(statError, fs.ErrNotExist):
		return "", fmt.Errorf(inspectDestinationFormat, destinationPath, statError)
	}

	directory := filepath.Dir(destinationPath)
	if mkdirError := os.MkdirAll(directory, configurationDirectoryMode); mkdirError != nil {
		return "", fmt.Errorf(createDirectoryErrorFormat, directory, mkdirError)
	}
	encoded, encodeError := yaml.Marshal(DefaultApplicationConfiguration())
	if encodeError != nil {
		return "", fmt.Errorf(encodeDefaultsErrorFormat, encodeError)
	}
	if writeError := os.WriteFile(destinationPath, encoded, configurationFileMode); writeError != nil {
		return "", fmt.Errorf(writeConfigurationFormat, destinationPath, writeError)
	}
	return destinationPath, nil
}

func initDestination(options InitOptions) (string, error) {
	switch options.Target {
	case "", InitTargetLocal:
		baseDirectory := options.WorkingDirectory
		if baseDirectory == "" {
			currentDirectory, currentError := os.Getwd()
			if currentError != nil {
				return "", fmt.Errorf(workingDirectoryErrorFormat, currentError)
			}
			baseDirectory = currentDirectory
		}
		return filepath.Join(baseDirectory, utils.ConfigFileName), nil
	case InitTargetGlobal:
		return GlobalConfigurationPath()
	default:
		return "", fmt.Errorf(unsupportedTargetFormat, options.Target)
	}
}
