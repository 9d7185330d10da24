// Package emailsettings manages a user's SMTP/IMAP connection settings.
// Each user has at most one settings record. Passwords are sealed with
// secretbox before they reach the repository and never leave this package
// in plaintext except to the SMTP verifier.
package emailsettings
