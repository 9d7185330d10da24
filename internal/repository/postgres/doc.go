// Package postgres implements the service repository interfaces against
// PostgreSQL. One file per aggregate; all queries use parameter binding and
// map sql.ErrNoRows (and relevant constraint violations) to the owning
// service's sentinel errors.
package postgres
