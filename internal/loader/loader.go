// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package loader reads a directory of YAML DAG descriptions into
// digraph.DAG values, the on-disk counterpart of the DAG model (spec §3).
// Each file describes one periodic task: its period and relative deadline
// live on the source node, everything else is a flat node/edge list.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/dagu-org/dagsim/internal/digraph"
)

type nodeSpec struct {
	ID               int    `yaml:"id"`
	ExecutionTime    int32  `yaml:"execution_time"`
	Priority         *int32 `yaml:"priority,omitempty"`
	RelativeDeadline *int32 `yaml:"relative_deadline,omitempty"`
	Dummy            bool   `yaml:"dummy,omitempty"`
}

type edgeSpec struct {
	From   int   `yaml:"from"`
	To     int   `yaml:"to"`
	Weight int32 `yaml:"weight,omitempty"`
}

type dagSpec struct {
	Name             string     `yaml:"name"`
	Period           int32      `yaml:"period"`
	RelativeDeadline int32      `yaml:"relative_deadline"`
	Nodes            []nodeSpec `yaml:"nodes"`
	Edges            []edgeSpec `yaml:"edges"`
}

// LoadDir reads every *.yaml/*.yml file directly under dir, in filename
// order, and returns one digraph.DAG per file. dag_id is not assigned here
// — the scheduler kernel injects it from the slice's index.
func LoadDir(dir string) ([]*digraph.DAG, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name := e.Name(); strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			files = append(files, name)
		}
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, fmt.Errorf("loader: no DAG files found in %s", dir)
	}

	dags := make([]*digraph.DAG, 0, len(files))
	for _, name := range files {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loader: %s: %w", path, err)
		}
		var spec dagSpec
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("loader: %s: %w", path, err)
		}
		if spec.Name == "" {
			spec.Name = strings.TrimSuffix(name, filepath.Ext(name))
		}
		d, err := build(spec)
		if err != nil {
			return nil, fmt.Errorf("loader: %s: %w", path, err)
		}
		dags = append(dags, d)
	}
	return dags, nil
}

func build(spec dagSpec) (*digraph.DAG, error) {
	d := digraph.New(spec.Name)
	for _, n := range spec.Nodes {
		node := digraph.NewNode(n.ID, n.ExecutionTime)
		if n.Priority != nil {
			node.Set(digraph.ParamPriority, *n.Priority)
		}
		if n.RelativeDeadline != nil {
			node.Set(digraph.ParamRelativeDeadline, *n.RelativeDeadline)
		}
		if n.Dummy {
			node.Set(digraph.ParamDummy, 1)
		}
		if err := d.AddNode(node); err != nil {
			return nil, err
		}
	}
	for _, e := range spec.Edges {
		if err := d.AddEdge(e.From, e.To, e.Weight); err != nil {
			return nil, err
		}
	}

	src, err := d.Source()
	if err != nil {
		return nil, err
	}
	if err := d.SetParam(src.ID, digraph.ParamPeriod, spec.Period); err != nil {
		return nil, err
	}
	if err := d.SetParam(src.ID, digraph.ParamRelativeDeadline, spec.RelativeDeadline); err != nil {
		return nil, err
	}
	return d, nil
}
