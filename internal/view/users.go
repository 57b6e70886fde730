package view

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"
	"github.com/msomdec/userdesk/internal/domain"
	"github.com/msomdec/userdesk/internal/service"
)

// UserGridID is the element patched by live search.
const UserGridID = "user-grid"

// UsersPage renders the list screen.
func UsersPage(v service.ListView) templ.Component {
	return page("Users Management", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<main>
<header>
<h1>Users Management</h1>
<form method="post" action="/logout"><button type="submit">Logout</button></form>
</header>
`); err != nil {
			return err
		}
		if err := alert(w, "success", v.Notice); err != nil {
			return err
		}
		if v.Status.Kind == domain.StatusError {
			if err := alert(w, "error", v.Status.Reason); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<div data-signals:search="''">
<input type="text" placeholder="Search users..." data-bind:search data-on:input__debounce.150ms="@get('/users/search')">
</div>
`); err != nil {
			return err
		}
		if err := UserGrid(v.Users, v.UpdatedAt).Render(ctx, w); err != nil {
			return err
		}
		if err := pager(w, v.Pagination); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main>")
		return err
	}))
}

// UserGrid renders the user cards. It is also sent alone as a datastar
// fragment while searching. updatedAt stamps the grid after a local change so
// a morph replaces every card.
func UserGrid(users domain.UserCollection, updatedAt time.Time) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		stamp := ""
		if !updatedAt.IsZero() {
			stamp = fmt.Sprintf(` data-updated-at="%d"`, updatedAt.UnixMilli())
		}
		if _, err := fmt.Fprintf(w, `<div id="%s"%s>`+"\n", UserGridID, stamp); err != nil {
			return err
		}
		for _, u := range users {
			name := esc(u.FullName())
			if _, err := fmt.Fprintf(w, `<div class="user-card" id="user-%d">
<img src="%s" alt="%s" width="64" height="64">
<div><h2>%s</h2><p>%s</p></div>
<form method="post" action="/users/%d/edit"><button type="submit">Edit</button></form>
<form method="post" action="/users/%d/delete"><button type="submit">Delete</button></form>
</div>
`, u.ID, esc(u.AvatarURL), name, name, esc(u.Email), u.ID, u.ID); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</div>\n")
		return err
	})
}

func pager(w io.Writer, p domain.Pagination) error {
	if _, err := io.WriteString(w, `<nav class="pages">`); err != nil {
		return err
	}
	for n := 1; n <= p.TotalPages; n++ {
		current := ""
		if n == p.CurrentPage {
			current = ` aria-current="page"`
		}
		if _, err := fmt.Fprintf(w, `<form method="post" action="/users/page"><button type="submit" name="page" value="%d"%s>%d</button></form>`, n, current, n); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</nav>\n")
	return err
}
