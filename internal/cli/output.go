package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/lvim-tech/qlfind/pkg/commands/files"
	"github.com/lvim-tech/qlfind/pkg/process"
	"github.com/lvim-tech/qlfind/pkg/search"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var summaryColor = color.New(color.Faint)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

// writeStructured handles the json and yaml formats. It reports false for
// the table format.
func writeStructured(out io.Writer, format string, v interface{}) (bool, error) {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

func writeSearchResult(out io.Writer, format string, res *search.Result) error {
	if done, err := writeStructured(out, format, res); done {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED\tPATH")
	for _, r := range res.Records {
		size := files.FormatSize(r.SizeBytes)
		if r.Kind == search.KindDirectory {
			size = "dir"
		}
		modified := "-"
		if !r.ModifiedAt.IsZero() {
			modified = r.ModifiedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, size, modified, r.Path)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	source := "walk"
	if res.Accelerated {
		source = "index"
	}
	_, err := summaryColor.Fprintf(out, "%d results in %dms (%s)\n", res.TotalCount, res.ElapsedMillis, source)
	return err
}

func writeProcesses(out io.Writer, format string, records []process.ProcessRecord) error {
	if records == nil {
		records = []process.ProcessRecord{}
	}
	if done, err := writeStructured(out, format, records); done {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PID\tMEMORY\tSESSION\t#\tNAME")
	for _, p := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.PID, p.MemoryUsageRaw, p.SessionName, p.SessionNumber, p.Name)
	}
	return tw.Flush()
}
