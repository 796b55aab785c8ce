package schedule

import (
	"regexp"
	"strings"
)

// linePattern matches a candidate free-text schedule line:
// ISO date, one weekday token (ignored), a time range, then the remainder.
var linePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\s+\S+\s+(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})\s+(.+)$`)

// fieldSplit separates the tail of a line into columns: a tab, or a run
// of two-plus spaces (single spaces belong to multi-word names).
var fieldSplit = regexp.MustCompile(`\t| {2,}`)

// typeVocabulary is the fixed set of class-category words recognized in
// free-form remainders, matched as whole words.
var typeVocabulary = []string{
	"ćwiczenia",
	"wykład",
	"laboratorium",
	"seminarium",
	"rezerwacja",
	"konwersatorium",
	"lektorat",
}

// FreeTextStrategy reads the schedule as loose line-oriented text. It is
// the fallback for page layouts where no usable table survives, and it is
// heuristic by nature: the class type is found by vocabulary scan, and the
// last two multi-space-separated fields after it are taken as instructor
// and room. Titles containing accidental double spaces can defeat the
// field split; that limitation is accepted.
type FreeTextStrategy struct{}

func (FreeTextStrategy) Extract(doc []byte) ([]Event, error) {
	var events []Event
	for _, line := range strings.Split(string(doc), "\n") {
		m := linePattern.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			// Prose, navigation, anything that is not a schedule line.
			continue
		}

		ev := Event{
			Date:  m[1],
			Start: m[2],
			End:   m[3],
		}
		ev.Title, ev.Type, ev.Instructor, ev.Room = splitRemainder(m[4])
		if ev.Title == "" {
			ev.Title = ev.Type
		}
		if ev.Title == "" {
			ev.Title = "Zajęcia"
		}
		events = append(events, ev)
	}
	return events, nil
}

// splitRemainder carves "title type instructor room" out of the free text
// after the time range.
func splitRemainder(rest string) (title, typ, instructor, room string) {
	tail := rest
	// The earliest whole-word vocabulary occurrence wins, so a title that
	// itself mentions a later category word still splits at the right spot.
	typeIdx := -1
	for _, word := range typeVocabulary {
		if idx := wholeWordIndex(rest, word); idx >= 0 && (typeIdx < 0 || idx < typeIdx) {
			typeIdx = idx
			typ = word
		}
	}
	if typeIdx >= 0 {
		title = Normalize(rest[:typeIdx])
		tail = rest[typeIdx+len(typ):]
	}
	if typ == "" {
		// No recognized category: the whole remainder is scanned for
		// instructor/room, what is left becomes the title.
		tail = rest
	}

	fields := fieldSplit.Split(tail, -1)
	var nonEmpty []string
	for _, f := range fields {
		if f = Normalize(f); f != "" {
			nonEmpty = append(nonEmpty, f)
		}
	}

	if len(nonEmpty) >= 2 {
		instructor = nonEmpty[len(nonEmpty)-2]
		room = nonEmpty[len(nonEmpty)-1]
		if typ == "" {
			title = Normalize(strings.Join(nonEmpty[:len(nonEmpty)-2], " "))
		}
	} else if typ == "" {
		title = Normalize(tail)
	}
	return title, typ, instructor, room
}

// wholeWordIndex returns the byte index of word in s when it occurs
// delimited by whitespace or string boundaries, -1 otherwise.
func wholeWordIndex(s, word string) int {
	for start := 0; ; {
		idx := strings.Index(s[start:], word)
		if idx < 0 {
			return -1
		}
		idx += start
		end := idx + len(word)
		beforeOK := idx == 0 || isSpaceByte(s[idx-1])
		afterOK := end == len(s) || isSpaceByte(s[end])
		if beforeOK && afterOK {
			return idx
		}
		start = end
	}
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t'
}
