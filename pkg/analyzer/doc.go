// Package analyzer verifies the module dependency graph of a multi-group UI
// build.
//
// # Overview
//
// Each group writes up to four JSON artifacts into its directory under the
// artifact root: components-dependencies.json, markup-dependencies.json,
// input-paths.json and less-dependencies.json. Load reads them concurrently,
// then registers every declared module in a file level DirectedGraph with its
// filtered, normalized dependencies.
//
// Four passes then inspect the graph:
//
//   - TestLostDependencies: dependencies nobody declared, checked against the
//     source tree
//   - TestCycles: module level cycles (warnings)
//   - TestUndeclaredUIDependencies: group dependencies missing from the
//     group manifest (errors)
//   - TestUICycles: group level cycles (errors)
//
// # Usage Example
//
//	a, err := analyzer.New(analyzer.Options{Logger: logger})
//	if err != nil {
//		return err
//	}
//	diags, err := a.Verify(ctx, groups, "build/artifacts", "src")
//	var artErr *analyzer.ArtifactError
//	if errors.As(err, &artErr) {
//		log.Fatalf("corrupt artifact %s", artErr.Path)
//	}
//
// An Analyzer is not safe for concurrent use and is meant for a single run.
package analyzer
