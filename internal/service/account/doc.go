// Package account manages a user's sending email accounts: the From
// identities used on outbound mail, their verification state, daily send
// caps, and which one is the default.
//
// The service layer owns validation and the single-default invariant. It
// depends on the Repository interface defined here and should never import
// from api/. Repository implementations live in repository/postgres/.
package account
