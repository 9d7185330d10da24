// Package template manages MJML email templates: CRUD, compilation to
// HTML through the hosted MJML API, Liquid variable extraction, and
// per-contact substitution.
//
// Compiled HTML is cached on the row keyed by a source checksum, so a
// template only goes back to the compiler when its MJML changes.
package template
