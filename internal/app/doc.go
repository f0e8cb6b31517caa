// Package app contains the core application logic. It defines the main App
// struct and its configuration, loads the factor catalog, registers the
// function modules and implements the check, plan, graph and simulate
// commands, decoupled from any specific entrypoint like a CLI or server.
package app
