package schedule

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// timeRangePattern matches a whole normalized time-range cell:
// "HH:MM - HH:MM" with arbitrary whitespace around the dash.
var timeRangePattern = regexp.MustCompile(`^\s*(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})\s*$`)

// TableStrategy reads the schedule page as a row-oriented HTML table.
// Expected cell order per row: date, time-range, subject, type,
// instructor, room. Rows that do not fit (headers, separators, short
// rows) are skipped, never reported as errors.
type TableStrategy struct{}

func (TableStrategy) Extract(doc []byte) ([]Event, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	var events []Event
	for _, row := range collectRows(root) {
		cells := cellTexts(row)
		if len(cells) < 6 {
			continue
		}

		m := timeRangePattern.FindStringSubmatch(cells[1])
		if m == nil {
			// Header or separator row.
			continue
		}

		ev := Event{
			Date:       cells[0],
			Start:      m[1],
			End:        m[2],
			Title:      cells[2],
			Type:       cells[3],
			Instructor: cells[4],
			Room:       cells[5],
		}
		if ev.Title == "" {
			// The page occasionally leaves the subject cell blank for
			// reservations; fall back so the summary is never empty.
			ev.Title = ev.Type
		}
		if ev.Title == "" {
			ev.Title = "Zajęcia"
		}
		events = append(events, ev)
	}

	return events, nil
}

// collectRows walks the parsed tree and returns every <tr> element in
// document order, regardless of nesting depth.
func collectRows(n *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			rows = append(rows, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return rows
}

// cellTexts returns the normalized text of each <td>/<th> child of a row.
func cellTexts(row *html.Node) []string {
	var cells []string
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, Normalize(nodeText(c)))
		}
	}
	return cells
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
