// Package commands defines the flashio CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init     Create an erased image for the configured bank
//   - write    Erase a region and program a file (or stdin) into it
//   - read     Dump a region to stdout, a file, or as hex
//   - erase    Erase the erase units covering a region
//   - verify   Compare a region with a file
//   - info     Print image geometry and digest
//
// # Implementation
//
// The root command loads the TOML config, applies flag overrides and builds
// the app (image store, simulated device factory, flash service) before any
// subcommand runs. Addresses and sizes accept Go integer literals, so
// 0x08004000, 0o777 and 1_024 all work.
package commands
