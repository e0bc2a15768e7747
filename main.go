// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/qcsv/qtask/cmd/qtask"

func main() {
	cmd.Execute()
}
