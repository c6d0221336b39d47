// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

//go:build !invariants

package invariants

// Enabled is true when the binary was built with the "invariants" build
// tag. Release builds skip the extra checks entirely.
const Enabled = false
