package utils

import (
	"os/exec"
	"strings"
)

// RunFunc is the signature of Run, kept as a type so callers can take the
// runner as a collaborator.
type RunFunc func(args []string, canFail bool) bool

// Run executes the given argument vector and captures stdout and stderr
// merged into one stream. It returns true when the command exits zero.
// A failing command returns false when canFail is set; otherwise the
// command line and its captured output are logged and the whole program
// terminates with a non-zero status.
func Run(args []string, canFail bool) bool {
	out, err := exec.Command(args[0], args[1:]...).CombinedOutput()
	if err == nil {
		return true
	}
	if canFail {
		return false
	}
	Log.Fatal().Str("command", strings.Join(args, " ")).Str("output", string(out)).Msg("Executed command failed")
	return false
}
