package views

import (
	"context"

	"github.com/a-h/templ"

	vm "winsbygroup.com/prodreg/internal/viewmodels"
)

// Storefront is the customer registration page. Anonymous visitors get a
// login prompt instead of the form.
func Storefront(loggedIn bool, owned []vm.Owned) templ.Component {
	return page("Product Registration", func(ctx context.Context, h *html) {
		h.raw(`<main class="container"><h1>Product Registration</h1>`)

		if !loggedIn {
			h.raw(`<p class="notice">Please log in to register your product.</p>`)
		} else {
			h.raw(`<form id="product-registration-form" enctype="multipart/form-data">`)
			csrfField(ctx, h)
			h.raw(`<div id="step-serial">`)
			h.raw(`<label for="serial_number">Serial Number</label>`)
			h.raw(`<input type="text" id="serial_number" name="serial_number" required autocomplete="off">`)
			h.raw(`<button type="button" id="validate-serial">Validate</button>`)
			h.raw(`</div>`)
			h.raw(`<div id="step-confirm" hidden>`)
			h.raw(`<div id="product-info"></div>`)
			h.raw(`<input type="hidden" id="product_id" name="product_id">`)
			h.raw(`<label for="purchase_proof">Proof of Purchase (PDF, JPEG or PNG)</label>`)
			h.raw(`<input type="file" id="purchase_proof" name="purchase_proof" accept=".pdf,.jpg,.jpeg,.png">`)
			h.raw(`<button type="submit" id="register-product">Register Product</button>`)
			h.raw(`</div>`)
			h.raw(`<div id="registration-message" role="status"></div>`)
			h.raw(`</form>`)
		}

		h.raw(`<section><h2>Your Registered Products</h2><div id="my-registrations">`)
		ownedList(h, loggedIn, owned)
		h.raw(`</div></section></main>`)
		h.raw(`<script src="/static/js/register.js" defer></script>`)
	})
}

// OwnedList is the fragment the page reloads after a registration.
func OwnedList(loggedIn bool, owned []vm.Owned) templ.Component {
	return component(func(ctx context.Context, h *html) {
		ownedList(h, loggedIn, owned)
	})
}

func ownedList(h *html, loggedIn bool, owned []vm.Owned) {
	if !loggedIn {
		h.raw(`<p>Please log in to view your registered products.</p>`)
		return
	}
	if len(owned) == 0 {
		h.raw(`<p>You have not registered any products yet.</p>`)
		return
	}

	h.raw(`<table class="table"><thead><tr>`)
	h.raw(`<th>Product</th><th>Serial Number</th><th>Registration Date</th><th>Proof of Purchase</th>`)
	h.raw(`</tr></thead><tbody>`)
	for _, o := range owned {
		h.printf(`<tr><td>%s</td><td>%s</td><td>%s</td>`,
			esc(o.ProductName), esc(o.SerialNumber), esc(vm.DateText(o.RegistrationDate)))
		if o.ProofURL != "" {
			h.printf(`<td><a href="%s" target="_blank" rel="noopener">View</a></td>`, attrURL(o.ProofURL))
		} else {
			h.raw(`<td>N/A</td>`)
		}
		h.raw(`</tr>`)
	}
	h.raw(`</tbody></table>`)
}
