// Package templates renders the HTML views of the web UI as templ components.
package templates

import (
	"io"

	"github.com/a-h/templ"
)

// htmlWriter writes markup and keeps the first error so components can
// render straight through and report once.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(s string) {
	if hw.err == nil {
		_, hw.err = io.WriteString(hw.w, s)
	}
}

func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

// attr writes name="value" with the value escaped.
func (hw *htmlWriter) attr(name, value string) {
	hw.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}
