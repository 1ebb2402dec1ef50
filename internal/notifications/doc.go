// Package notifications delivers workflow events via ntfy push messages.
//
// The default implementation publishes to the topic configured in config.toml
// and gracefully degrades to a no-op when no topic is set. Each event class
// (phase transitions, finalization, errors) can be toggled independently so
// users only receive the milestones they care about.
//
// Workflow code depends only on the Service interface; swap in another
// transport by providing an alternative implementation.
package notifications
