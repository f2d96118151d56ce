// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package htmx provides types and helpers for htmx integration.
package htmx

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Header constants for htmx request headers.
const (
	HeaderRequest = "HX-Request"
	HeaderBoosted = "HX-Boosted"
	HeaderTarget  = "HX-Target"
)

// Header constants for htmx response headers.
const (
	HeaderRedirect = "HX-Redirect"
	HeaderRefresh  = "HX-Refresh"
)

// Request contains information about an htmx request.
type Request struct {
	// IsHtmx is true if this is an htmx request (HX-Request header is "true").
	IsHtmx bool

	// IsBoosted is true if this is a boosted request (HX-Boosted header is "true").
	IsBoosted bool

	// Target is the ID of the target element (HX-Target header).
	Target string
}

// ParseRequest extracts htmx information from request headers.
func ParseRequest(r *http.Request) *Request {
	return &Request{
		IsHtmx:    r.Header.Get(HeaderRequest) == "true",
		IsBoosted: r.Header.Get(HeaderBoosted) == "true",
		Target:    r.Header.Get(HeaderTarget),
	}
}

// Redirect sends the client to url. Non-boosted htmx requests get an
// HX-Redirect header so the whole page navigates instead of swapping the
// redirect target into a fragment.
func Redirect(c echo.Context, code int, url string) error {
	hx := ParseRequest(c.Request())
	if hx.IsHtmx && !hx.IsBoosted {
		c.Response().Header().Set(HeaderRedirect, url)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(code, url)
}
