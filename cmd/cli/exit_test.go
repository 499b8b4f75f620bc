package cli_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/iz/cmd/cli"
	"github.com/temirov/iz/internal/session"
)

func TestExitCodeFor(testInstance *testing.T) {
	testCases := []struct {
		name             string
		executionError   error
		expectedExitCode int
	}{
		{name: "no_error", executionError: nil, expectedExitCode: 0},
		{name: "command_exit_code_propagated", executionError: session.CommandFailedError{ExitCode: 7}, expectedExitCode: 7},
		{name: "wrapped_command_error_propagated", executionError: fmt.Errorf("session failed: %w", session.CommandFailedError{ExitCode: 42}), expectedExitCode: 42},
		{name: "interruption_maps_to_core_failure", executionError: session.InterruptedError{SignalName: "interrupt"}, expectedExitCode: cli.CoreFailureExitCode},
		{name: "other_failures_map_to_core_failure", executionError: errors.New("configuration missing"), expectedExitCode: cli.CoreFailureExitCode},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedExitCode, cli.ExitCodeFor(testCase.executionError))
		})
	}
}
