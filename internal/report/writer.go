// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
)

// Dump writes r to dir as a timestamped YAML file named
// <timestamp>-<algorithm>-log.yaml, mirroring the original simulator's log
// naming convention, and returns the path written.
func (r *Result) Dump(dir, algorithm string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: mkdir %s: %w", dir, err)
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("report: marshal: %w", err)
	}
	name := fmt.Sprintf("%s-%s-log.yaml", time.Now().Format("2006-01-02-15-04-05-000"), algorithm)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("report: write %s: %w", path, err)
	}
	return path, nil
}
