package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/stockpulse/internal/report"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func outputFormat(cmd *cobra.Command) string {
	f, _ := cmd.Flags().GetString("format")
	return strings.ToLower(strings.TrimSpace(f))
}

// emit writes data in the selected format. Text output is the markdown
// from render, styled with glamour when --pretty is set.
func emit(cmd *cobra.Command, data any, render func() string) error {
	f := outputFormat(cmd)
	if f == "" || f == formatText {
		pretty, _ := cmd.Flags().GetBool("pretty")
		return writeText(cmd.OutOrStdout(), render(), pretty)
	}
	return writeStructured(cmd.OutOrStdout(), f, data)
}

func writeText(w io.Writer, markdown string, pretty bool) error {
	out, err := report.Render(markdown, pretty)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, strings.TrimRight(out, "\n"))
	return err
}

func writeStructured(w io.Writer, format string, data any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
}

// parseSections turns "summary,news" into report sections; empty means all.
func parseSections(s string) ([]report.Section, error) {
	if strings.TrimSpace(s) == "" {
		return report.AllSections(), nil
	}
	valid := make(map[report.Section]bool)
	for _, sec := range report.AllSections() {
		valid[sec] = true
	}
	var out []report.Section
	for _, part := range strings.Split(s, ",") {
		sec := report.Section(strings.ToLower(strings.TrimSpace(part)))
		if sec == "" {
			continue
		}
		if !valid[sec] {
			return nil, fmt.Errorf("unknown report section %q", part)
		}
		out = append(out, sec)
	}
	return out, nil
}
