// Package registration implements the offline three-step exchange that
// brings a new participant into the registry:
//
//	Requested -> Reviewed -> Completed
//
// The requester produces an encrypted request artifact, the administrator
// reviews it into a signed, encrypted response artifact, and the requester
// verifies that signature before trusting anything inside. Artifacts are
// single files handed over out-of-band; no network protocol is involved.
package registration
