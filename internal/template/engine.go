package template

import (
	"fmt"
	"sort"
	"strings"
)

const (
	placeholderOpeningConstant                  = "#{"
	placeholderClosingRuneConstant              = '}'
	unknownCommandMessageTemplateConstant       = "unknown command %q; available commands: %s"
	missingParameterMessageTemplateConstant     = "command %q requires parameter %q; provide it with --param %s=<value>"
	malformedPlaceholderMessageTemplateConstant = "malformed placeholder at offset %d in template %q"
	availableCommandSeparatorConstant           = ", "
	placeholderUnderscoreRuneConstant           = '_'
)

// UnknownCommandError reports a command name absent from the configured commands.
type UnknownCommandError struct {
	CommandName       string
	AvailableCommands []string
}

// Error lists the configured commands alongside the rejected name.
func (commandError UnknownCommandError) Error() string {
	return fmt.Sprintf(unknownCommandMessageTemplateConstant, commandError.CommandName, strings.Join(commandError.AvailableCommands, availableCommandSeparatorConstant))
}

// MissingParameterError reports a placeholder without a matching --param value.
type MissingParameterError struct {
	CommandName   string
	ParameterName string
}

// Error names the missing parameter and how to supply it.
func (parameterError MissingParameterError) Error() string {
	return fmt.Sprintf(missingParameterMessageTemplateConstant, parameterError.CommandName, parameterError.ParameterName, parameterError.ParameterName)
}

// MalformedPlaceholderError reports a "#{" that never closes or encloses invalid characters.
type MalformedPlaceholderError struct {
	Template string
	Offset   int
}

// Error points at the byte offset of the broken placeholder.
func (placeholderError MalformedPlaceholderError) Error() string {
	return fmt.Sprintf(malformedPlaceholderMessageTemplateConstant, placeholderError.Offset, placeholderError.Template)
}

// Engine substitutes #{name} placeholders in configured command templates.
type Engine struct{}

// NewEngine constructs a template engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Resolve looks up the named command template and substitutes every placeholder.
//
// Placeholder names consist of letters, digits, and underscores. Text outside
// placeholders passes through unchanged, including "#" characters that do not
// open a placeholder. Unused parameters are not an error.
func (engine *Engine) Resolve(commandName string, commands map[string]string, parameters map[string]string) (string, error) {
	commandTemplate, commandKnown := commands[commandName]
	if !commandKnown {
		return "", UnknownCommandError{
			CommandName:       commandName,
			AvailableCommands: sortedCommandNames(commands),
		}
	}

	var resolvedCommand strings.Builder
	resolvedCommand.Grow(len(commandTemplate))

	remainingTemplate := commandTemplate
	for {
		openingIndex := strings.Index(remainingTemplate, placeholderOpeningConstant)
		if openingIndex < 0 {
			resolvedCommand.WriteString(remainingTemplate)
			break
		}

		resolvedCommand.WriteString(remainingTemplate[:openingIndex])
		templateOffset := len(commandTemplate) - len(remainingTemplate) + openingIndex

		placeholderName, consumedLength, placeholderValid := scanPlaceholder(remainingTemplate[openingIndex:])
		if !placeholderValid {
			return "", MalformedPlaceholderError{Template: commandTemplate, Offset: templateOffset}
		}

		parameterValue, parameterProvided := parameters[placeholderName]
		if !parameterProvided {
			return "", MissingParameterError{CommandName: commandName, ParameterName: placeholderName}
		}

		resolvedCommand.WriteString(parameterValue)
		remainingTemplate = remainingTemplate[openingIndex+consumedLength:]
	}

	return resolvedCommand.String(), nil
}

// scanPlaceholder reads a placeholder starting at the "#{" prefix of the input.
// It returns the placeholder name, the total length consumed including the
// delimiters, and whether the placeholder is well formed.
func scanPlaceholder(input string) (string, int, bool) {
	nameStart := len(placeholderOpeningConstant)
	cursor := nameStart
	for cursor < len(input) {
		currentByte := input[cursor]
		if currentByte == byte(placeholderClosingRuneConstant) {
			if cursor == nameStart {
				return "", 0, false
			}
			return input[nameStart:cursor], cursor + 1, true
		}
		if !isPlaceholderNameByte(currentByte) {
			return "", 0, false
		}
		cursor++
	}
	return "", 0, false
}

func isPlaceholderNameByte(candidate byte) bool {
	switch {
	case candidate >= 'a' && candidate <= 'z':
		return true
	case candidate >= 'A' && candidate <= 'Z':
		return true
	case candidate >= '0' && candidate <= '9':
		return true
	case candidate == byte(placeholderUnderscoreRuneConstant):
		return true
	default:
		return false
	}
}

func sortedCommandNames(commands map[string]string) []string {
	commandNames := make([]string, 0, len(commands))
	for commandName := range commands {
		commandNames = append(commandNames, commandName)
	}
	sort.Strings(commandNames)
	return commandNames
}
