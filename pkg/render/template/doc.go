// Package template defines the template rendering seam shared by the hydration
// script generator, the page shell, and the pongo framework adapter. The
// gotemplate subpackage provides the pongo2-backed implementation.
package template
