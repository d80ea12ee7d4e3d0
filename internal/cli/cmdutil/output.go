package cmdutil

import (
	"encoding/json"
	"fmt"
	"io"
)

// Output is the JSON envelope every command prints in --json mode.
type Output struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// WriteJSON prints data in a success envelope.
func WriteJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Output{Status: "success", Data: data}); err != nil {
		return fmt.Errorf("encode JSON output: %w", err)
	}
	return nil
}

// WriteError prints err in an error envelope when jsonMode is set, and
// returns err either way.
func WriteError(w io.Writer, jsonMode bool, err error) error {
	if jsonMode {
		_ = json.NewEncoder(w).Encode(Output{Status: "error", Error: err.Error()})
	}
	return err
}

// ExitError carries the game's non-zero exit status out of a command so
// main can exit with it.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("game exited with status %d", e.Code)
}
