// Package io provides JSON import and export of generated cities and a DOT
// export of the street network.
//
// # JSON Format
//
// A [City] snapshot records the parameters, the full point arena and the
// working cell list:
//
//	{
//	  "id": "5f0c...",
//	  "seed": 42,
//	  "generation": 6,
//	  "params": {"width": 600, "depth": 600, "block_size": 20000, ...},
//	  "points": [
//	    {"id": 0, "pos": {"x": 0, "y": 0}, "neighbors": [-1, -1, 2, 1]},
//	    ...
//	  ],
//	  "cells": [
//	    {"corners": [0, 4, 2, 5], "area": 180000},
//	    ...
//	  ]
//	}
//
// Neighbors are listed north, west, south, east; -1 marks an empty slot.
// Point IDs must equal their index in the array.
//
// With an inset length, the snapshot also carries "lots": each cell's corners
// moved inward, ready for a drawing tool to fill as building footprints.
//
// # Import
//
// [ReadJSON] and [ImportJSON] decode a snapshot; [City.Restore] rebuilds the
// planar graph and cells from it and rejects snapshots whose neighbor links
// are not symmetric.
//
// # Export
//
// [WriteJSON] and [ExportJSON] encode a snapshot built with [FromGenerator].
// [ToDOT] writes the street network as an undirected Graphviz graph with
// pinned positions; [LayoutDOT] runs it through Graphviz (neato) and returns
// the laid-out DOT, which also validates the output.
package io
