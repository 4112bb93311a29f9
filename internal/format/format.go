// Package format renders values as JSON for files and terminal output.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Encode renders v as a dataset document: two-space indentation, HTML and
// non-ASCII characters left as-is, and a trailing newline.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes formatted JSON to w, optionally wrapped in a slack code block.
func WriteJSON(w io.Writer, v any, slackMode bool) error {
	output, err := Encode(v)
	if err != nil {
		return err
	}
	if slackMode {
		fmt.Fprintln(w, "```")
	}
	w.Write(output)
	if slackMode {
		fmt.Fprintln(w, "```")
	}
	return nil
}
