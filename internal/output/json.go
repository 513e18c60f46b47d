// Package output renders the CLI's JSON envelope. Every command prints
// exactly one envelope to stdout; human formatting stays out of here.
package output

import (
	"encoding/json"
	"os"
)

// Response is the envelope every command emits.
type Response struct {
	SchemaVersion string      `json:"schema_version"`
	Success       bool        `json:"success"`
	Data          interface{} `json:"data,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// Success builds a successful envelope around data.
func Success(data interface{}) Response {
	return Response{
		SchemaVersion: "v1",
		Success:       true,
		Data:          data,
	}
}

// Error builds a failure envelope from err.
func Error(err error) Response {
	return Response{
		SchemaVersion: "v1",
		Success:       false,
		Error:         err.Error(),
	}
}

// Print encodes v to stdout. Output is compact by default so agent
// hosts spend fewer tokens on it; MENTAT_PRETTY_JSON=1 indents for
// human eyes.
func Print(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	if pretty := os.Getenv("MENTAT_PRETTY_JSON"); pretty == "1" || pretty == "true" {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// PrintSuccess prints data wrapped in a success envelope.
func PrintSuccess(data interface{}) error {
	return Print(Success(data))
}

// PrintError prints err wrapped in a failure envelope.
func PrintError(err error) error {
	return Print(Error(err))
}
