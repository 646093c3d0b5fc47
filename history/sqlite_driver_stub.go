//go:build !cgo

// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package history

// Without CGO there is no SQLite driver registered; Open will fail at
// runtime with a clear driver-not-found error rather than at build time,
// mirroring whisper/engine_stub.go's "fail gracefully when CGO is
// disabled" approach.
const sqlDriverName = "sqlite3"
