package templates

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"unicode/utf8"

	"github.com/JonMunkholm/formlog/internal/core"
	"github.com/a-h/templ"
)

// dataPreviewRunes caps the data column of the entries table.
const dataPreviewRunes = 160

// EntriesPageData is the view model of the entries page.
type EntriesPageData struct {
	Page     core.EntryPage
	Query    url.Values // active filter parameters, reused by pager and export links
	Profiles []string
}

// EntriesPage lists logged entries with filters, pagination and export links.
func EntriesPage(data EntriesPageData) templ.Component {
	return Layout("Form log", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		renderFilters(hw, data.Query)
		renderExports(hw, data)
		renderEntries(hw, data.Page.Entries)
		renderPager(hw, data)
		return hw.err
	}))
}

func renderFilters(hw *htmlWriter, q url.Values) {
	hw.raw(`<form class="filters" method="get" action="/">`)
	for _, f := range []struct{ name, label, typ string }{
		{"identifier", "Form", "text"},
		{"pageId", "Page", "number"},
		{"since", "Since", "date"},
		{"until", "Until", "date"},
	} {
		hw.raw("<label>")
		hw.text(f.label)
		hw.raw(" <input")
		hw.attr("type", f.typ)
		hw.attr("name", f.name)
		hw.attr("value", q.Get(f.name))
		hw.raw("></label>")
	}
	hw.raw(`<button type="submit">Filter</button></form>`)
}

func renderExports(hw *htmlWriter, data EntriesPageData) {
	if len(data.Profiles) == 0 {
		return
	}
	q := filterQuery(data.Query)
	hw.raw(`<nav class="exports">Export:`)
	for _, name := range data.Profiles {
		href := "/api/export/" + url.PathEscape(name)
		if enc := q.Encode(); enc != "" {
			href += "?" + enc
		}
		hw.raw("<a")
		hw.attr("href", href)
		hw.raw(">")
		hw.text(name)
		hw.raw("</a>")
	}
	hw.raw("</nav>")
}

func renderEntries(hw *htmlWriter, entries []core.Entry) {
	if len(entries) == 0 {
		hw.raw("<p>No entries match the current filter.</p>")
		return
	}

	hw.raw("<table><thead><tr><th>Created</th><th>Form</th><th>Page</th><th>Language</th><th>Data</th></tr></thead><tbody>")
	for _, e := range entries {
		hw.raw("<tr><td><a")
		hw.attr("href", "/api/entries/"+url.PathEscape(e.ID))
		hw.raw(">")
		hw.text(e.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
		hw.raw("</a></td><td>")
		hw.text(e.Identifier)
		hw.raw("</td><td>")
		hw.text(strconv.Itoa(e.PageID))
		hw.raw("</td><td>")
		hw.text(e.Language)
		hw.raw("</td><td><code>")
		hw.text(truncate(string(e.Data), dataPreviewRunes))
		hw.raw("</code></td></tr>")
	}
	hw.raw("</tbody></table>")
}

func renderPager(hw *htmlWriter, data EntriesPageData) {
	p := data.Page
	pages := p.TotalPages()

	hw.raw(`<nav class="pager">`)
	if p.Page > 1 {
		pagerLink(hw, data.Query, p.Page-1, "Previous")
	}
	hw.raw("<span>Page ")
	hw.text(strconv.Itoa(p.Page))
	hw.raw(" of ")
	hw.text(strconv.Itoa(max(pages, 1)))
	hw.raw(" (")
	hw.text(strconv.FormatInt(p.Total, 10))
	hw.raw(" entries)</span>")
	if p.Page < pages {
		pagerLink(hw, data.Query, p.Page+1, "Next")
	}
	hw.raw("</nav>")
}

func pagerLink(hw *htmlWriter, q url.Values, page int, label string) {
	q = filterQuery(q)
	q.Set("page", strconv.Itoa(page))
	hw.raw("<a")
	hw.attr("href", "/?"+q.Encode())
	hw.raw(">")
	hw.text(label)
	hw.raw("</a>")
}

// filterQuery copies the filter parameters of q, dropping empty ones.
func filterQuery(q url.Values) url.Values {
	out := url.Values{}
	for _, key := range []string{"identifier", "pageId", "since", "until", "pageSize"} {
		if v := q.Get(key); v != "" {
			out.Set(key, v)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
