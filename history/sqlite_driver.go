//go:build cgo

// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package history

// Register the CGO-based SQLite driver when CGO is enabled. Building
// without CGO drops this file, matching whisper/engine.go's cgo-gated
// pattern for its own C dependency.
import (
	_ "github.com/mattn/go-sqlite3"
)

const sqlDriverName = "sqlite3"
