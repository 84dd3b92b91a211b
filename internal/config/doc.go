// Package config provides configuration management for the protokoll CLI.
//
// Configuration is assembled from several sources, later sources overriding
// earlier ones:
//
//  1. Built-in defaults (mcpServerCommand: protokoll-mcp, no server args)
//  2. protokoll-config.yaml files found in the working directory and each of
//     its parents, merged so that the file closest to the working directory wins
//  3. PROTOKOLL_* environment variables, optionally seeded from a .env file in
//     the working directory
//  4. Overrides supplied by command-line flags
//
// When --config points at a file, step 2 reads only that file.
//
// # Configuration Structure
//
//	mcpServerCommand: protokoll-mcp
//	mcpServerArgs: ["--stdio"]
//	inputDirectory: ~/recordings
//	outputDirectory: ~/notes
//	processedDirectory: ~/recordings/done
//	contextDirectories:
//	  - ~/notes/.protokoll
//	model: gpt-4o
//	transcriptionModel: whisper-1
//	debug: false
//	verbose: false
//
// # Environment Variables
//
// Each key has an upper-snake-case variable with the PROTOKOLL_ prefix, for
// example PROTOKOLL_MCP_SERVER_COMMAND or PROTOKOLL_INPUT_DIRECTORY. List
// values are comma separated.
package config
