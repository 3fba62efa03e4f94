// Package transcript models a diarized meeting transcript with its notes and
// implements the document-wide find and replace that runs outside the editor.
package transcript

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Segment is one diarized utterance. Start and End are seconds.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`

	extra extraFields
}

// Speaker maps a diarization label to display names at several scopes.
type Speaker struct {
	DiarizationLabel string `json:"diarization_label"`
	Name             string `json:"name,omitempty"`
	LocalName        string `json:"local_name,omitempty"`
	GlobalName       string `json:"global_name,omitempty"`

	extra extraFields
}

// Transcript is the persisted recording transcript.
type Transcript struct {
	Name     string    `json:"name,omitempty"`
	Segments []Segment `json:"segments"`
	Speakers []Speaker `json:"speakers,omitempty"`
	Notes    string    `json:"notes,omitempty"`
	Text     string    `json:"text,omitempty"`

	extra extraFields
}

// ResolveName picks the display name for a speaker: the recording-local name,
// then the global profile name, then the plain name, then the raw label.
func ResolveName(s Speaker) string {
	for _, name := range []string{s.LocalName, s.GlobalName, s.Name} {
		if name != "" {
			return name
		}
	}
	return s.DiarizationLabel
}

// SpeakerMap maps diarization labels to resolved names.
func SpeakerMap(speakers []Speaker) map[string]string {
	m := make(map[string]string, len(speakers))
	for _, s := range speakers {
		m[s.DiarizationLabel] = ResolveName(s)
	}
	return m
}

// FormatText renders segments as "[MM:SS] Name: text" lines.
func FormatText(segments []Segment, names map[string]string) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		label := seg.Speaker
		if label == "" {
			label = "Unknown"
		}
		name, ok := names[label]
		if !ok {
			name = label
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s", timestamp(seg.Start), name, strings.TrimSpace(seg.Text)))
	}
	return strings.Join(lines, "\n")
}

func timestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("[%02d:%02d]", total/60, total%60)
}

// JoinSegments rebuilds the flat transcript text.
func JoinSegments(segments []Segment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.Text
	}
	return strings.Join(parts, " ")
}

// ExportKind selects what Export includes.
type ExportKind string

const (
	ExportTranscript ExportKind = "transcript"
	ExportNotes      ExportKind = "notes"
	ExportBoth       ExportKind = "both"
)

// ErrNoNotes is returned when a notes export is requested for a transcript
// without notes.
var ErrNoNotes = errors.New("no meeting notes available")

// Export renders a plain-text export and a suggested file name.
func Export(t *Transcript, kind ExportKind) (content, filename string, err error) {
	name := t.Name
	if name == "" {
		name = "Recording"
	}
	rule := strings.Repeat("=", 50)

	var sections []string
	switch kind {
	case ExportTranscript, ExportBoth:
		sections = append(sections, name+" - Transcript", rule, "", FormatText(t.Segments, SpeakerMap(t.Speakers)))
	case ExportNotes:
	default:
		return "", "", fmt.Errorf("unknown export kind %q", kind)
	}

	if kind == ExportNotes || kind == ExportBoth {
		switch {
		case t.Notes != "":
			if kind == ExportBoth {
				sections = append(sections, "", "")
			}
			sections = append(sections, name+" - Meeting Notes", rule, "", t.Notes)
		case kind == ExportNotes:
			return "", "", ErrNoNotes
		}
	}

	switch kind {
	case ExportTranscript:
		filename = name + " - Transcript.txt"
	case ExportNotes:
		filename = name + " - Notes.txt"
	default:
		filename = name + " - Full Export.txt"
	}
	return strings.Join(sections, "\n"), SanitizeFilename(filename), nil
}

// SanitizeFilename keeps letters, digits, spaces and "-_." only.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(" -_.", r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
