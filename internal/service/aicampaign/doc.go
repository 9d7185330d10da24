// Package aicampaign implements admin-managed automated outreach
// campaigns: binding a prospect list to a template and sender identity,
// the launch/cancel lifecycle, and per-contact send enqueueing.
//
// Launch runs under a distributed lock so concurrent launch requests
// across server instances enqueue each contact exactly once. The actual
// sending happens in internal/worker.
package aicampaign
