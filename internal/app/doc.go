// Package app wires configuration, stores, the registry and the unlocked
// session into one explicit context passed to every operation. There is no
// process-wide state; two contexts in one process stay fully independent.
package app
