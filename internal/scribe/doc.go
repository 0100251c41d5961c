// Package scribe implements the site mirroring pipeline: it takes a list of
// page URLs, fetches a rendered text representation of each one through a
// bounded pool of in-flight fetches, records per-page outcomes in a durable
// status journal, and merges the successful artifacts into one combined
// markdown document.
package scribe
