package view

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/msomdec/userdesk/internal/domain"
	"github.com/msomdec/userdesk/internal/service"
)

// EditPage renders the edit form with the values last entered.
func EditPage(v service.EditView) templ.Component {
	return page("Edit User", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<main>\n<h1>Edit User</h1>\n"); err != nil {
			return err
		}
		if v.Status.Kind == domain.StatusError {
			if err := alert(w, "error", v.Status.Reason); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, `<form method="post" action="/edit/%d">
<label>First Name <input type="text" name="first_name" value="%s" required></label>
<label>Last Name <input type="text" name="last_name" value="%s" required></label>
<label>Email <input type="email" name="email" value="%s" required></label>
<button type="submit">Update User</button>
</form>
<form method="post" action="/edit/%d/cancel"><button type="submit">Cancel</button></form>
</main>`, v.Record.ID, esc(v.Form.FirstName), esc(v.Form.LastName), esc(v.Form.Email), v.Record.ID)
		return err
	}))
}
