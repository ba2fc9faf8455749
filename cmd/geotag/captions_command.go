package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"geotag/internal/services"
	"geotag/internal/subtitles"
	"geotag/internal/telemetry"
)

var defaultCaptionFields = []telemetry.Key{
	telemetry.KeyTime,
	telemetry.KeyISO,
	telemetry.KeyShutter,
	telemetry.KeyFNumber,
	telemetry.KeyLatitude,
	telemetry.KeyLongitude,
	telemetry.KeyRelAlt,
}

func newCaptionsCommand(_ *commandContext) *cobra.Command {
	var fieldsFlag string
	var limit int

	cmd := &cobra.Command{
		Use:         "captions SRT",
		Short:       "Show the telemetry parsed from each caption",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := parseFieldList(fieldsFlag)
			if err != nil {
				return err
			}
			captions, err := subtitles.LoadSRT(args[0])
			if err != nil {
				return services.Wrap(services.ErrNotFound, "captions", "load", args[0], err)
			}
			if limit > 0 && len(captions) > limit {
				captions = captions[:limit]
			}

			headers := []string{"#", "Start", "End"}
			aligns := []columnAlignment{alignRight, alignRight, alignRight}
			for _, key := range keys {
				headers = append(headers, fieldLabel(key))
				aligns = append(aligns, alignLeft)
			}
			rows := make([][]string, 0, len(captions))
			for _, c := range captions {
				fields := telemetry.Extract(c.Text)
				row := []string{strconv.Itoa(c.Index), formatOffset(c.Start), formatOffset(c.End)}
				for _, key := range keys {
					value := fields[key]
					if value == "" {
						value = "-"
					}
					row = append(row, value)
				}
				rows = append(rows, row)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			fmt.Fprintf(out, "%d captions\n", len(rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&fieldsFlag, "fields", "", "Comma-separated telemetry keys to show, or \"all\"")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many captions")
	return cmd
}

func parseFieldList(value string) ([]telemetry.Key, error) {
	value = strings.TrimSpace(value)
	switch value {
	case "":
		return defaultCaptionFields, nil
	case "all":
		return telemetry.Keys, nil
	}
	known := make(map[telemetry.Key]bool, len(telemetry.Keys))
	for _, k := range telemetry.Keys {
		known[k] = true
	}
	var keys []telemetry.Key
	for _, part := range strings.Split(value, ",") {
		key := telemetry.Key(strings.ToLower(strings.TrimSpace(part)))
		if key == "" {
			continue
		}
		if !known[key] {
			return nil, services.Wrap(services.ErrValidation, "captions", "fields", fmt.Sprintf("unknown telemetry key %q", key), nil)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func formatOffset(d time.Duration) string {
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d.%03d", ms/3600000, ms/60000%60, ms/1000%60, ms%1000)
}
