package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const styles = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}
table{border-collapse:collapse;width:100%}th,td{border-bottom:1px solid #e5e7eb;padding:.4rem .6rem;text-align:left;vertical-align:top}
th{background:#f9fafb}code{font-size:.85em;word-break:break-all}
form.filters{display:flex;gap:.5rem;flex-wrap:wrap;margin-bottom:1rem}
nav.pager,nav.exports{margin:1rem 0;display:flex;gap:1rem}
.alert{border:1px solid #fca5a5;background:#fef2f2;padding:.75rem;border-radius:.25rem}`

// Layout wraps body in the page chrome.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw("<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\">")
		hw.raw("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"><title>")
		hw.text(title)
		hw.raw(" · formlog</title><style>" + styles + "</style></head><body><h1>")
		hw.text(title)
		hw.raw("</h1>")
		if hw.err != nil {
			return hw.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		hw.raw("</body></html>")
		return hw.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<div class="alert" role="alert"><strong>`)
		hw.text(message)
		hw.raw("</strong>")
		if action != "" {
			hw.raw("<p>")
			hw.text(action)
			hw.raw("</p>")
		}
		if code != "" {
			hw.raw("<small>Code: ")
			hw.text(code)
			hw.raw("</small>")
		}
		hw.raw("</div>")
		return hw.err
	})
}
