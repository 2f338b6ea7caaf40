// Package table turns raw KBO stat pages into normalized tabular data.
//
// The source site has changed markup continually since 1982; nothing here
// trusts CSS classes or ids. Tables are located by section-label proximity
// or by their normalized header sets, and every header spelling variant is
// resolved through a data-driven synonym map.
package table

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RawTable is the ephemeral in-memory form of one HTML table: an ordered
// header list and ordered rows of cell strings. Never persisted.
type RawTable struct {
	Caption string
	Headers []string
	Rows    [][]string
}

// Page is one parsed stat page: the goquery document plus every table on
// it, in document order.
type Page struct {
	doc    *goquery.Document
	Tables []RawTable
}

// ParsePage parses raw HTML into a Page.
func ParsePage(html string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	page := &Page{doc: doc}
	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		page.Tables = append(page.Tables, tableFromSelection(sel))
	})
	return page, nil
}

func tableFromSelection(sel *goquery.Selection) RawTable {
	t := RawTable{Caption: strings.TrimSpace(sel.Find("caption").First().Text())}

	sel.Find("thead th").Each(func(_ int, th *goquery.Selection) {
		t.Headers = append(t.Headers, cellText(th))
	})

	body := sel.Find("tbody tr")
	if body.Length() == 0 {
		body = sel.Find("tr")
	}
	body.Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.Find("th, td").Each(func(_ int, td *goquery.Selection) {
			row = append(row, cellText(td))
		})
		if len(row) > 0 {
			t.Rows = append(t.Rows, row)
		}
	})

	// Headerless tables promote their first row; common on legacy pages
	// rendered without thead.
	if len(t.Headers) == 0 && len(t.Rows) > 0 {
		t.Headers = t.Rows[0]
		t.Rows = t.Rows[1:]
	}
	return t
}

func cellText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}

// NormalizedHeaders returns the canonical key for every column.
func (t RawTable) NormalizedHeaders() []string {
	out := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		out[i] = NormalizeHeader(h)
	}
	return out
}

// HeaderSet returns the normalized headers as a membership set.
func (t RawTable) HeaderSet() map[string]bool {
	set := make(map[string]bool, len(t.Headers))
	for _, h := range t.NormalizedHeaders() {
		set[h] = true
	}
	return set
}

// HasAll reports whether the table's normalized headers are a superset of
// the required canonical keys.
func (t RawTable) HasAll(required []string) bool {
	set := t.HeaderSet()
	for _, key := range required {
		if !set[key] {
			return false
		}
	}
	return true
}

// DictRows converts rows into canonical-key→raw-cell maps. Rows whose cell
// count does not match the header count violate the table's own structure;
// they are skipped and counted, and the rest of the table still parses.
func (t RawTable) DictRows(logger *slog.Logger) (rows []map[string]string, skipped int) {
	headers := t.NormalizedHeaders()
	for i, cells := range t.Rows {
		if len(cells) != len(headers) {
			skipped++
			if logger != nil {
				logger.Warn("row/header cell count mismatch",
					"caption", t.Caption, "row", i,
					"cells", len(cells), "headers", len(headers))
			}
			continue
		}
		row := make(map[string]string, len(headers))
		for j, h := range headers {
			row[h] = strings.TrimSpace(cells[j])
		}
		rows = append(rows, row)
	}
	return rows, skipped
}
