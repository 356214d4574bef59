// Package changelog parses the product changelog out of a Markdown
// document and renders each release entry to HTML for the marketing site.
//
// The expected source format is one level-2 heading per release:
//
//	## v1.4.0 - 2026-05-12
//
//	Body in regular Markdown.
//
// Anything before the first release heading is treated as preamble and
// skipped.
//
// # What this package must NOT do
//
//   - Fetch the changelog (callers own I/O).
//   - Sanitize embedded HTML; sources are trusted repo content.
package changelog
