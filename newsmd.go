// Package newsmd converts news-article web pages into Markdown documents
// with YAML front matter, for archival and translation workflows.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, sqlite/).
package newsmd
