package utils

import "context"

const (
	projectConfigurationPathContextKeyConstant = commandContextKey("projectConfigurationPath")
)

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithProjectConfigurationPath attaches the project configuration file path to the provided context.
func (accessor CommandContextAccessor) WithProjectConfigurationPath(parentContext context.Context, projectConfigurationPath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, projectConfigurationPathContextKeyConstant, projectConfigurationPath)
}

// ProjectConfigurationPath extracts the project configuration file path from the provided context.
func (accessor CommandContextAccessor) ProjectConfigurationPath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	projectConfigurationPath, pathAvailable := executionContext.Value(projectConfigurationPathContextKeyConstant).(string)
	if !pathAvailable {
		return "", false
	}
	return projectConfigurationPath, true
}
