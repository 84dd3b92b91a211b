package main

import (
	"strings"

	"protokoll/cmd"
)

// Set via ldflags at build time.
var (
	version   = "dev"
	gitBranch = ""
	gitCommit = ""
	gitTags   = ""
)

func main() {
	cmd.SetVersion(version)
	cmd.SetBuildInfo(buildInfo())
	cmd.Execute()
}

func buildInfo() string {
	info := strings.Join(strings.Fields(gitBranch+" "+gitCommit+" "+gitTags), " ")
	if info == "" {
		return "unknown"
	}
	return info
}
