// Copyright (C) 2024 The Dagu Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package build holds version metadata injected at link time via
// -ldflags; Slug defaults to the lower-cased AppName when none is injected.
package build

import "strings"

var (
	Version = "dev"
	AppName = "dagsim"
	Slug    = ""
)

func init() {
	if Slug == "" {
		Slug = strings.ToLower(AppName)
	}
}
