// Package commands defines the vaultsync CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init         Create local keys; with --admin, bootstrap a new group
//   - request      Write a registration request artifact for the administrator
//   - review       Administrator: grant a request, write the response artifact
//   - complete     Finish registration from the administrator's response
//   - sync         Merge the local and shared locations
//   - users        List registered users
//   - role         Add or remove a role on a user
//   - remove       Block a user and drop them from future recipient sets
//   - fingerprint  Print this participant's public key fingerprints
//
// # Implementation
//
// The root command loads config from the home directory and builds one
// app.Context before any subcommand runs. Subcommands that touch key
// material unlock the context with the passphrase flag first.
package commands
