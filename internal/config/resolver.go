package config

import (
	"os"

	pathutils "github.com/temirov/iz/internal/utils/path"
)

// Overrides captures CLI-provided settings that take precedence over every other layer.
//
// The Set flags record whether the corresponding flag was supplied at all, so an
// explicit `--keep=false` still overrides a config file that enables keeping.
type Overrides struct {
	TempDirectory    string
	TempDirectorySet bool
	Keep             bool
	KeepSet          bool
}

// EffectiveConfiguration is the immutable merge of all configuration layers for one session.
type EffectiveConfiguration struct {
	Commands          map[string]string
	TempDirectoryBase string
	Keep              bool
}

// EnvironmentLookup resolves environment variables; tests substitute deterministic lookups.
type EnvironmentLookup func(variableName string) (string, bool)

// Resolver merges CLI overrides, environment variables, project configuration, and defaults.
//
// Each field resolves independently by a fixed provider-priority list: CLI flag,
// then environment (temp dir only), then config file, then built-in default.
type Resolver struct {
	environmentLookup EnvironmentLookup
	homeExpander      *pathutils.HomeExpander
}

// NewResolver constructs a resolver backed by the process environment.
func NewResolver() *Resolver {
	return NewResolverWithEnvironment(os.LookupEnv)
}

// NewResolverWithEnvironment constructs a resolver with a custom environment lookup.
func NewResolverWithEnvironment(environmentLookup EnvironmentLookup) *Resolver {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	return &Resolver{
		environmentLookup: environmentLookup,
		homeExpander:      pathutils.NewHomeExpander(),
	}
}

// Resolve produces the effective configuration for one session.
func (resolver *Resolver) Resolve(projectConfiguration ProjectConfiguration, overrides Overrides) EffectiveConfiguration {
	commands := make(map[string]string, len(projectConfiguration.Commands))
	for commandName, commandTemplate := range projectConfiguration.Commands {
		commands[commandName] = commandTemplate
	}

	return EffectiveConfiguration{
		Commands:          commands,
		TempDirectoryBase: resolver.resolveTempDirectoryBase(projectConfiguration, overrides),
		Keep:              resolveKeep(projectConfiguration, overrides),
	}
}

func (resolver *Resolver) resolveTempDirectoryBase(projectConfiguration ProjectConfiguration, overrides Overrides) string {
	if overrides.TempDirectorySet {
		return resolver.homeExpander.Expand(overrides.TempDirectory)
	}

	if environmentValue, environmentValueSet := resolver.environmentLookup(TempDirectoryEnvironmentVariable); environmentValueSet && len(environmentValue) > 0 {
		return resolver.homeExpander.Expand(environmentValue)
	}

	if len(projectConfiguration.TempDirectory) > 0 {
		return resolver.homeExpander.Expand(projectConfiguration.TempDirectory)
	}

	return DefaultTempDirectoryName
}

func resolveKeep(projectConfiguration ProjectConfiguration, overrides Overrides) bool {
	if overrides.KeepSet {
		return overrides.Keep
	}

	if projectConfiguration.Keep != nil {
		return *projectConfiguration.Keep
	}

	return false
}
