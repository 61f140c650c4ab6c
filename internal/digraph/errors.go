// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package digraph

import "errors"

// Structural errors are fatal: they indicate a malformed DAG definition or
// a programming error at a call site, never a runtime condition a caller
// can recover from.
var (
	// ErrSourceNotUnique is returned by Source when a graph has zero or
	// more than one node with no incoming edges.
	ErrSourceNotUnique = errors.New("digraph: source node is not unique")
	// ErrNodeNotFound is returned by any query keyed on a node id that is
	// out of range for the graph's node list.
	ErrNodeNotFound = errors.New("digraph: node not found")
	// ErrParamExists is returned by Add when the key is already set.
	ErrParamExists = errors.New("digraph: parameter already exists")
	// ErrParamMissing is returned by Update when the key is not set, and
	// by any reserved-parameter accessor when the value is absent.
	ErrParamMissing = errors.New("digraph: parameter missing")
	// ErrNodeIDMismatch is returned by AddNode when the node's declared id
	// does not equal its position in the node list.
	ErrNodeIDMismatch = errors.New("digraph: node id does not match its position")
	// ErrDuplicateNodeID is returned by AddNode when the id has already
	// been assigned to another node in the same graph.
	ErrDuplicateNodeID = errors.New("digraph: duplicate node id")
)
