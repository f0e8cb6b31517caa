// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// builds the factorgrid cobra commands and translates flags and FACTORGRID_*
// environment variables into the application's configuration.
package cli
