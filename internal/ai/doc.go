// Package ai assembles completion providers into a suggestion service with
// fallback and an on-disk cache. Providers live under internal/services.
package ai
