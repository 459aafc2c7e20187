package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/marmos91/filebridge/pkg/cmis"
	"gopkg.in/yaml.v3"
)

// objectRow is the printable summary of an object.
type objectRow struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Type   string `json:"type" yaml:"type"`
	Size   int64  `json:"size,omitempty" yaml:"size,omitempty"`
	Mime   string `json:"mime_type,omitempty" yaml:"mime_type,omitempty"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Depth  int    `json:"depth,omitempty" yaml:"depth,omitempty"`
	Folder bool   `json:"-" yaml:"-"`

	// rel is the slash separated path below the listed folder
	rel string
}

func rowOf(obj *cmis.ObjectData, depth int) objectRow {
	row := objectRow{ID: obj.ID(), Name: obj.Name(), Depth: depth, rel: obj.Name()}
	if v, ok := obj.Properties.Get(cmis.PropObjectTypeID).Value().(string); ok {
		row.Type = v
	}
	if v, ok := obj.Properties.Get(cmis.PropContentStreamLength).Value().(int64); ok {
		row.Size = v
	}
	if v, ok := obj.Properties.Get(cmis.PropContentStreamMimeType).Value().(string); ok {
		row.Mime = v
	}
	if v, ok := obj.Properties.Get(cmis.PropPath).Value().(string); ok {
		row.Path = v
	}
	base, _ := obj.Properties.Get(cmis.PropBaseTypeID).Value().(string)
	row.Folder = base == cmis.TypeFolder
	return row
}

// flatten walks a descendants tree depth first.
func flatten(nodes []*cmis.ObjectInFolderContainer, parent string, depth int, rows []objectRow) []objectRow {
	for _, n := range nodes {
		row := rowOf(n.Object.Object, depth)
		if parent != "" {
			row.rel = parent + "/" + row.Name
		}
		rows = append(rows, row)
		rows = flatten(n.Children, row.rel, depth+1, rows)
	}
	return rows
}

// filterRows keeps the rows whose relative path matches pattern. An empty
// pattern keeps everything.
func filterRows(rows []objectRow, pattern string) ([]objectRow, error) {
	if pattern == "" {
		return rows, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	kept := rows[:0]
	for _, r := range rows {
		if ok, _ := doublestar.Match(pattern, r.rel); ok {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

func printRows(w io.Writer, rows []objectRow, indent bool) error {
	rows, err := filterRows(rows, matchPattern)
	if err != nil {
		return err
	}

	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		return yaml.NewEncoder(w).Encode(rows)
	case "table", "":
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tSIZE\tMIME TYPE\tID")
	for _, r := range rows {
		name := r.Name
		if r.Folder {
			name += "/"
		}
		if indent {
			name = strings.Repeat("  ", r.Depth) + name
		}
		size := "-"
		if !r.Folder {
			size = fmt.Sprintf("%d", r.Size)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, r.Type, size, r.Mime, r.ID)
	}
	return tw.Flush()
}
