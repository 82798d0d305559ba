// Package app wires application dependencies for the CLI.
//
// It loads Config from TOML, then builds the image store, the device
// factory and the flash service, exposing them via App for commands to use.
package app
