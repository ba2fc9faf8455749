package exifmeta

import (
	"fmt"
	"sort"

	"github.com/barasher/go-exiftool"
)

// ToolEntry is one tag reported by exiftool.
type ToolEntry struct {
	Tag   string
	Value string
}

// ToolResult holds exiftool output for a single file.
type ToolResult struct {
	Path    string
	Entries []ToolEntry
	Err     error
}

// ExiftoolDump runs exiftool over paths and returns every tag it reports,
// sorted by name. A per-file failure is reported on that file's result.
func ExiftoolDump(binary string, paths ...string) ([]ToolResult, error) {
	var opts []func(*exiftool.Exiftool) error
	if binary != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(binary))
	}
	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		return nil, fmt.Errorf("start exiftool: %w", err)
	}
	defer et.Close()

	infos := et.ExtractMetadata(paths...)
	results := make([]ToolResult, 0, len(infos))
	for _, info := range infos {
		result := ToolResult{Path: info.File, Err: info.Err}
		if info.Err == nil {
			for tag, value := range info.Fields {
				result.Entries = append(result.Entries, ToolEntry{Tag: tag, Value: fmt.Sprint(value)})
			}
			sort.Slice(result.Entries, func(i, j int) bool { return result.Entries[i].Tag < result.Entries[j].Tag })
		}
		results = append(results, result)
	}
	return results, nil
}
