package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/iota-uz/staff-console/pkg/apiclient"
	"github.com/iota-uz/staff-console/pkg/serrors"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func writeJSONLine(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// statusText is the user-facing message for a successful response status.
func statusText(status int) string {
	if msg, ok := apiclient.StatusMessage(status); ok {
		return msg
	}
	msg, _ := apiclient.StatusMessage(http.StatusOK)
	return msg
}

// printFieldErrors lists local or server-side field errors, one per line.
func printFieldErrors(w io.Writer, fields map[string]string) {
	verrs := serrors.ValidationErrors(fields)
	for _, f := range verrs.Fields() {
		_, _ = fmt.Fprintf(w, "  %s: %s\n", f, verrs[f])
	}
}
