package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"geotag/internal/exifmeta"
	"geotag/internal/services"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var useExiftool bool
	var gpsOnly bool

	cmd := &cobra.Command{
		Use:   "inspect PATH...",
		Short: "Print the EXIF tags of JPEG files or of every JPEG in a directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectJPEGs(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return services.Wrap(services.ErrNotFound, "inspect", "collect", "no .jpg or .jpeg files found", nil)
			}
			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()

			if useExiftool {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				results, err := exifmeta.ExiftoolDump(cfg.ExiftoolBinary(), files...)
				if err != nil {
					return services.Wrap(services.ErrExternalTool, "inspect", "exiftool", "", err)
				}
				failed := 0
				for _, r := range results {
					if r.Err != nil {
						failed++
						fmt.Fprintf(errOut, "%s: %v\n", r.Path, r.Err)
						continue
					}
					rows := make([][]string, 0, len(r.Entries))
					for _, e := range r.Entries {
						if gpsOnly && !strings.HasPrefix(e.Tag, "GPS") {
							continue
						}
						rows = append(rows, []string{e.Tag, e.Value})
					}
					printInspection(out, r.Path, []string{"Tag", "Value"}, rows)
				}
				return inspectOutcome(failed, len(results))
			}

			failed := 0
			for _, path := range files {
				entries, err := exifmeta.Read(path)
				if err != nil {
					failed++
					fmt.Fprintf(errOut, "%s: %v\n", path, err)
					continue
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					if gpsOnly && !strings.HasSuffix(e.IFD, "GPSInfo") {
						continue
					}
					rows = append(rows, []string{e.IFD, e.Tag, e.Value})
				}
				printInspection(out, path, []string{"IFD", "Tag", "Value"}, rows)
			}
			return inspectOutcome(failed, len(files))
		},
	}

	cmd.Flags().BoolVar(&useExiftool, "exiftool", false, "Report every tag through exiftool")
	cmd.Flags().BoolVar(&gpsOnly, "gps", false, "Only show GPS tags")
	return cmd
}

func printInspection(out io.Writer, path string, headers []string, rows [][]string) {
	fmt.Fprintln(out, path)
	if len(rows) == 0 {
		fmt.Fprintln(out, "  (no tags)")
		return
	}
	fmt.Fprintln(out, renderTable(headers, rows, nil))
}

// inspectOutcome fails the command only when no file could be read.
func inspectOutcome(failed, total int) error {
	if total > 0 && failed == total {
		return services.Wrap(services.ErrValidation, "inspect", "read", fmt.Sprintf("none of the %d files had readable EXIF data", total), nil)
	}
	return nil
}

func collectJPEGs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, services.Wrap(services.ErrNotFound, "inspect", "collect", arg, err)
			}
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", arg, err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() || !isJPEGName(e.Name()) {
				continue
			}
			found = append(found, filepath.Join(arg, e.Name()))
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func isJPEGName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}
