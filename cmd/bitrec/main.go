// Copyright 2026 The bitrec Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"github.com/bpowers/bitrec/cmd/bitrec/cmd"
)

func main() {
	cmd.Execute()
}
