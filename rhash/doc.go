// Package rhash computes resume-descriptor fingerprints.
//
// A descriptor is a (reference, content-type) pair. Both components are
// reduced to a canonical form, the forms are joined into a length-prefixed,
// tagged record, and the record is digested to 32 bytes. Descriptors that
// differ only in superficial formatting share a fingerprint.
//
// Callers pass descriptors in the framed form built by Frame. HashOnce is the
// status-code entry point for foreign callers; Compute returns a structured
// *Error instead.
//
// Builds tagged rhash_ct normalize, assemble and digest with operations whose
// sequence depends only on input lengths. Both builds produce the same
// fingerprints and fail on the same inputs.
package rhash
