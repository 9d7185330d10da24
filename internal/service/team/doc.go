// Package team implements collaboration groups: team CRUD, membership
// with roles, and email invitations redeemed by single-use tokens.
//
// Authorization rules live here, not in handlers: owners and team admins
// manage members and invitations, and a team always keeps at least one
// owner.
package team
