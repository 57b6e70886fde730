// Package view renders the screens as HTML. Components are plain
// templ.Components so handlers and datastar fragments can share them.
package view

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"

var esc = templ.EscapeString[string]

// page wraps body in the shared document shell.
func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<script type="module" src="%s"></script>
</head>
<body>
`, esc(title), datastarScript); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n</body>\n</html>\n")
		return err
	})
}

// alert renders a message box, or nothing when msg is empty.
func alert(w io.Writer, kind, msg string) error {
	if msg == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, `<div class="alert alert-%s" role="alert">%s</div>`+"\n", kind, esc(msg))
	return err
}

// NotFoundPage renders a terminal message for a screen with no content.
func NotFoundPage(msg string) templ.Component {
	return page("Not found", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<main><p id="not-found">%s</p><a href="/users">Back to users</a></main>`, esc(msg))
		return err
	}))
}
