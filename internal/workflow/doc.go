// Package workflow defines the fixed phase sequence of the writing workflow
// (storyboard, drafting, revision, finalization) and the section and project
// statuses that mirror it.
//
// Treat this package as the single source of truth for phase semantics; the
// sedimentation manager, the phase modules, and the stores all derive their
// transition rules from the ordering declared here.
package workflow
