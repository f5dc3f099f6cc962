package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	vm "winsbygroup.com/prodreg/internal/viewmodels"
)

// Login renders the operator login form.
func Login(errMsg string) templ.Component {
	return page("Login", func(ctx context.Context, h *html) {
		h.raw(`<main class="container narrow"><h1>Product Registrations</h1>`)
		if errMsg != "" {
			h.printf(`<p class="error">%s</p>`, esc(errMsg))
		}
		h.raw(`<form method="post" action="/web/login">`)
		h.raw(`<label for="api_key">API Key</label>`)
		h.raw(`<input type="password" id="api_key" name="api_key" required autofocus>`)
		h.raw(`<button type="submit">Log in</button></form></main>`)
	})
}

// Registrations is the operator page: import form plus all rows.
func Registrations(rows []vm.Registration, flash *vm.Flash) templ.Component {
	return page("Product Registrations", func(ctx context.Context, h *html) {
		h.raw(`<main class="container">`)
		h.raw(`<header class="bar"><h1>Product Registrations</h1>`)
		h.raw(`<form method="post" action="/web/logout">`)
		csrfField(ctx, h)
		h.raw(`<button type="submit" class="link">Log out</button></form></header>`)

		if flash != nil && flash.Message != "" {
			class := "notice"
			if flash.Error {
				class = "error"
			}
			h.printf(`<p class="%s">%s</p>`, class, esc(flash.Message))
		}

		h.raw(`<section><h2>Import Serial Numbers</h2>`)
		h.raw(`<form method="post" action="/web/import" enctype="multipart/form-data">`)
		csrfField(ctx, h)
		h.raw(`<input type="file" name="serial_numbers_file" accept=".csv,.txt,.xls,.xlsx" required>`)
		h.raw(`<button type="submit">Import</button>`)
		h.raw(`<p class="hint">One serial number and product id per line, separated by a comma.</p>`)
		h.raw(`</form></section>`)

		h.raw(`<section id="registrations">`)
		registrationsTable(ctx, h, rows)
		h.raw(`</section></main>`)
	})
}

// RegistrationsTable is the table fragment on its own.
func RegistrationsTable(rows []vm.Registration) templ.Component {
	return component(func(ctx context.Context, h *html) {
		registrationsTable(ctx, h, rows)
	})
}

func registrationsTable(ctx context.Context, h *html, rows []vm.Registration) {
	if len(rows) == 0 {
		h.raw(`<p>No registrations yet.</p>`)
		return
	}

	h.raw(`<table class="table"><thead><tr>`)
	h.raw(`<th>User</th><th>Product</th><th>Serial Number</th><th>Registration Date</th><th>Proof of Purchase</th><th>Actions</th>`)
	h.raw(`</tr></thead><tbody>`)
	for _, r := range rows {
		id := strconv.FormatInt(r.RegistrationID, 10)
		h.printf(`<tr id="registration-%s"><td>%s</td><td>%s</td><td>%s</td><td>%s</td>`,
			id, esc(r.UserText()), esc(r.ProductText()), esc(r.SerialNumber), esc(vm.DateText(r.RegistrationDate)))
		if r.ProofURL != "" {
			h.printf(`<td><a href="%s" target="_blank" rel="noopener">View</a></td>`, attrURL(r.ProofURL))
		} else {
			h.raw(`<td>N/A</td>`)
		}
		h.printf(`<td><a href="/web/registrations/%s/edit">Edit</a> `, id)
		h.printf(`<form method="post" action="/web/registrations/%s/delete" class="inline" onsubmit="return confirm('Delete this registration?')">`, id)
		csrfField(ctx, h)
		h.raw(`<button type="submit" class="link danger">Delete</button></form></td></tr>`)
	}
	h.raw(`</tbody></table>`)
}

// EditRegistration renders the edit form for one row.
func EditRegistration(r vm.Registration, errMsg string) templ.Component {
	return page("Edit Registration", func(ctx context.Context, h *html) {
		id := strconv.FormatInt(r.RegistrationID, 10)
		h.raw(`<main class="container narrow"><h1>Edit Registration</h1>`)
		if errMsg != "" {
			h.printf(`<p class="error">%s</p>`, esc(errMsg))
		}
		h.printf(`<p>Owner: %s</p>`, esc(r.UserText()))
		h.printf(`<form method="post" action="/web/registrations/%s">`, id)
		csrfField(ctx, h)
		h.raw(`<label for="serial_number">Serial Number</label>`)
		h.printf(`<input type="text" id="serial_number" name="serial_number" value="%s" required>`, esc(r.SerialNumber))
		h.raw(`<label for="product_id">Product ID</label>`)
		h.printf(`<input type="number" id="product_id" name="product_id" min="1" value="%d" required>`, r.ProductID)
		h.raw(`<button type="submit">Update</button> <a href="/web/">Cancel</a></form></main>`)
	})
}
