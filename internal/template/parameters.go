package template

import (
	"fmt"
	"strings"
)

const (
	parameterSeparatorConstant                    = "="
	invalidParameterMessageTemplateConstant       = "invalid parameter %q: expected key=value"
	emptyParameterNameMessageTemplateConstant     = "invalid parameter %q: parameter name is empty"
	parameterAssignmentSeparatorPartCountConstant = 2
)

// InvalidParameterError reports a --param value that is not a key=value assignment.
type InvalidParameterError struct {
	Assignment string
	Reason     string
}

// Error renders the rejected assignment.
func (parameterError InvalidParameterError) Error() string {
	return parameterError.Reason
}

// ParseParameterAssignments converts key=value assignments into a parameter map.
//
// Each assignment splits on the first "=", so values may themselves contain "=".
// When a name repeats, the last assignment wins.
func ParseParameterAssignments(assignments []string) (map[string]string, error) {
	parameters := make(map[string]string, len(assignments))
	for _, assignment := range assignments {
		parameterName, parameterValue, parseError := parseParameterAssignment(assignment)
		if parseError != nil {
			return nil, parseError
		}
		parameters[parameterName] = parameterValue
	}
	return parameters, nil
}

func parseParameterAssignment(assignment string) (string, string, error) {
	assignmentParts := strings.SplitN(assignment, parameterSeparatorConstant, parameterAssignmentSeparatorPartCountConstant)
	if len(assignmentParts) != parameterAssignmentSeparatorPartCountConstant {
		return "", "", InvalidParameterError{
			Assignment: assignment,
			Reason:     fmt.Sprintf(invalidParameterMessageTemplateConstant, assignment),
		}
	}
	if len(assignmentParts[0]) == 0 {
		return "", "", InvalidParameterError{
			Assignment: assignment,
			Reason:     fmt.Sprintf(emptyParameterNameMessageTemplateConstant, assignment),
		}
	}
	return assignmentParts[0], assignmentParts[1], nil
}
