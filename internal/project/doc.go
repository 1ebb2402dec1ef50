// Package project defines the core domain model (projects, sections,
// citations, suggestions) and its SQLite persistence. Section writes run
// under an optimistic revision check so concurrent editors never silently
// overwrite each other.
package project
