// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

//go:build invariants

// Package invariants exports a boolean constant indicating whether we were
// built with the "invariants" build tag. When set, the record package
// performs extra checks: a bounds check on every index-entry read, and a
// sorted, duplicate-free index check during buffer validation. Stale
// FieldSlot detection does not depend on this flag; it always runs.
package invariants

// Enabled is true when the binary was built with the "invariants" build
// tag.
const Enabled = true
