// Package cli provides the modverify command-line interface.
//
// # Overview
//
// Every command reads modverify.yaml from -dir (or the file named by
// -config), applies MODVERIFY_* environment overrides and then command flags.
//
// # Commands
//
// verify: Load the build artifacts and run every dependency check
//
//	modverify verify \
//		-dir . \
//		-format github \
//		-fail-on warning
//
// Keep verifying while the build writes artifacts:
//
//	modverify verify -watch -debounce 5s
//
// graph: Export the group or module graph with cycles highlighted
//
//	modverify graph -level group -format dot | dot -Tsvg > groups.svg
//	modverify graph -level file -format cytoscape -output graph.json
//
// impact: List groups that transitively depend on a group
//
//	modverify impact -group Controls
//
// normalize: Show how identifiers resolve
//
//	modverify normalize 'optional!Core/helpers.json' 'css!UI/theme'
//
// # Exit Codes
//
// 0 on success, 1 when a run cannot complete (bad configuration, unreadable
// artifact root, corrupt artifact), 2 when diagnostics meet the -fail-on
// threshold.
package cli
