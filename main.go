// SPDX-License-Identifier: MPL-2.0

package main

import cmd "packjs-cli/cmd/packjs"

func main() {
	cmd.Execute()
}
