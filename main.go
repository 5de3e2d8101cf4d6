package main

import "github.com/vollodin61/PkgDiffBranch/cmd"

var version = "dev"

func main() {
	cmd.Execute(version)
}
