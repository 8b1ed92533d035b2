// Package registry maintains the mapping of user IDs to public keys and
// roles. It enforces key uniqueness across entries, keeps at least one role
// per entry and never reissues an ID. The whole registry serializes to a
// single snapshot blob for replicated storage.
package registry
