// Package pkg provides the core libraries for Streetblock city generation.
//
// # Overview
//
// Streetblock grows a street network by recursive subdivision: one
// rectangular block is split by a new street, then every block that is still
// larger than the block size is split again, until nothing is left to split.
// Street ends snap onto nearby junctions so that blocks share corners. The
// pkg directory is organized into these areas:
//
//  1. [geom] - Pure geometry over points, segments and polylines
//  2. [city] - The planar point graph and quadrilateral cells
//  3. [city/split] and [city/generate] - One split and the generation driver
//  4. [io] - JSON snapshots and Graphviz DOT export
//  5. [pipeline] - Orchestration (generate → render → save) with caching
//  6. [cache], [store] - Result caching and snapshot persistence
//  7. [config], [errors], [observability], [buildinfo] - Supporting packages
//
// # Architecture
//
// The typical data flow through Streetblock:
//
//	Seed or config file
//	         ↓
//	    [city/generate] (draw parameters, seed the root block)
//	         ↓
//	    [city/split] (split every eligible block, once per generation)
//	         ↓
//	    [io] (snapshot as JSON, street graph as DOT)
//	         ↓
//	    [cache] / [store] (file, Redis, MongoDB)
//
// # Quick Start
//
// Grow a city and write it as JSON:
//
//	runner := pipeline.NewRunner(nil, nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{Seed: 42})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("city.json", result.Artifacts[pipeline.FormatJSON], 0o644)
//
// Drive the generator directly:
//
//	g, err := generate.New(generate.NewParams(42))
//	if err != nil {
//	    return err
//	}
//	g.RunToFixedPoint(100)
//	fmt.Println(len(g.Cells()), "blocks")
//
// # CLI
//
// The streetblock command in cmd/streetblock wraps the pipeline:
//
//	streetblock generate --seed 7 -f json,dot -o downtown
//	streetblock params --seed 7 > city.toml
//	streetblock inspect downtown.json
package pkg
