// Package sediment moves context across phase boundaries. A transfer loads
// the sections leaving a phase, computes a per-boundary enrichment delta,
// merges it into suggestion fields only, snapshots before and after, and
// advances statuses. Bodies and titles are never written by a transfer;
// only an explicit accept turns advisory content into text.
package sediment
