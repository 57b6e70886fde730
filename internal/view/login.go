package view

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// LoginPage renders the login form, keeping the submitted email.
func LoginPage(email, errMsg string) templ.Component {
	return page("Login", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<main>\n<h1>Login</h1>\n"); err != nil {
			return err
		}
		if err := alert(w, "error", errMsg); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, `<form method="post" action="/login">
<label>Email <input type="email" name="email" value="%s" required></label>
<label>Password <input type="password" name="password" required></label>
<button type="submit">Login</button>
</form>
</main>`, esc(email))
		return err
	}))
}
