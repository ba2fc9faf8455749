package subtitles

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Caption is one timed SRT block.
type Caption struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Contains reports whether pos falls inside the caption's closed interval.
func (c Caption) Contains(pos time.Duration) bool {
	return c.Start <= pos && pos <= c.End
}

// LoadSRT parses the SRT file at path.
func LoadSRT(path string) ([]Caption, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open srt: %w", err)
	}
	defer f.Close()
	captions, err := ParseSRT(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return captions, nil
}

// ParseSRT reads SRT blocks in file order. Blocks without a valid timing line
// are skipped. Caption text is kept verbatim, markup included.
func ParseSRT(r io.Reader) ([]Caption, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		captions []Caption
		block    []string
		first    = true
	)
	flush := func() {
		if caption, ok := parseBlock(block, len(captions)+1); ok {
			captions = append(captions, caption)
		}
		block = block[:0]
	}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		if strings.TrimSpace(line) == "" {
			if len(block) > 0 {
				flush()
			}
			continue
		}
		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	if len(block) > 0 {
		flush()
	}
	return captions, nil
}

func parseBlock(lines []string, fallbackIndex int) (Caption, bool) {
	timing := -1
	for i, line := range lines {
		if strings.Contains(line, "-->") {
			timing = i
			break
		}
	}
	if timing < 0 {
		return Caption{}, false
	}
	start, end, err := parseTiming(lines[timing])
	if err != nil {
		return Caption{}, false
	}
	index := fallbackIndex
	if timing > 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(lines[timing-1])); err == nil {
			index = n
		}
	}
	return Caption{
		Index: index,
		Start: start,
		End:   end,
		Text:  strings.Join(lines[timing+1:], "\n"),
	}, true
}

func parseTiming(line string) (time.Duration, time.Duration, error) {
	startText, endText, ok := strings.Cut(line, "-->")
	if !ok {
		return 0, 0, errors.New("missing arrow")
	}
	start, err := parseTimestamp(startText)
	if err != nil {
		return 0, 0, err
	}
	// Some writers append position hints after the end timestamp.
	endFields := strings.Fields(endText)
	if len(endFields) == 0 {
		return 0, 0, errors.New("missing end timestamp")
	}
	end, err := parseTimestamp(endFields[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseTimestamp accepts HH:MM:SS,mmm and HH:MM:SS.mmm.
func parseTimestamp(value string) (time.Duration, error) {
	value = strings.TrimSpace(strings.ReplaceAll(value, ",", "."))
	clock, fraction, ok := strings.Cut(value, ".")
	if !ok {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(clock, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if len(fraction) == 0 || len(fraction) > 3 || !allDigits(fraction) {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	for _, part := range hms {
		if part == "" || !allDigits(part) {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
	}
	hours, _ := strconv.Atoi(hms[0])
	minutes, _ := strconv.Atoi(hms[1])
	seconds, _ := strconv.Atoi(hms[2])
	millis, _ := strconv.Atoi(fraction)
	for i := len(fraction); i < 3; i++ {
		millis *= 10
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
