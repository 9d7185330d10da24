// Package prospect manages admin-owned prospect lists and their contacts,
// including CSV import with email-hash deduplication.
package prospect
