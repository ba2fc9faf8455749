package subtitles

import (
	"strings"
	"testing"
	"time"
)

const djiSRT = "\ufeff1\r\n00:00:00,000 --> 00:00:00,033\r\n<font size=\"28\">FrameCnt: 1\r\n[iso : 100] [latitude: 12.5]</font>\r\n\r\n" +
	"2\r\n00:00:00,033 --> 00:00:00,066\r\n[iso : 110]\r\n\r\n"

func TestParseSRTHandlesBOMAndCRLF(t *testing.T) {
	captions, err := ParseSRT(strings.NewReader(djiSRT))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(captions) != 2 {
		t.Fatalf("expected 2 captions, got %d", len(captions))
	}
	first := captions[0]
	if first.Index != 1 || first.Start != 0 || first.End != 33*time.Millisecond {
		t.Fatalf("unexpected first caption: %+v", first)
	}
	if !strings.Contains(first.Text, "[latitude: 12.5]") || !strings.HasPrefix(first.Text, "<font") {
		t.Fatalf("unexpected text %q", first.Text)
	}
	if strings.Contains(first.Text, "\r") {
		t.Fatalf("carriage return leaked into text: %q", first.Text)
	}
	if captions[1].Start != 33*time.Millisecond {
		t.Fatalf("unexpected second start %v", captions[1].Start)
	}
}

func TestParseSRTSkipsBlocksWithoutTiming(t *testing.T) {
	input := "1\nnot a timing line\ntext\n\n\n2\n00:00:01.500 --> 00:00:02.000\nkept\n"
	captions, err := ParseSRT(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(captions) != 1 {
		t.Fatalf("expected 1 caption, got %+v", captions)
	}
	if captions[0].Index != 2 || captions[0].Start != 1500*time.Millisecond || captions[0].Text != "kept" {
		t.Fatalf("unexpected caption %+v", captions[0])
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"01:02:03,456", time.Hour + 2*time.Minute + 3*time.Second + 456*time.Millisecond, false},
		{"00:00:00.5", 500 * time.Millisecond, false},
		{"00:00:10", 0, true},
		{"aa:00:00,000", 0, true},
		{"00:00:01,1234", 0, true},
		{"00:00:01,-5", 0, true},
		{"00:00:01,", 0, true},
		{"00:-1:01,000", 0, true},
		{"00:00:+1,000", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTimestamp(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("parseTimestamp(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
}
