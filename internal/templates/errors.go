// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import "github.com/a-h/templ"

// Error renders the generic error page.
func Error() templ.Component {
	return message("error_title", "error_body", "", "")
}

// NotFound renders the 404 page.
func NotFound() templ.Component {
	return message("not_found_title", "not_found_body", "", "")
}
