package rhash

import (
	"bytes"

	"xdao.co/resumehash/digest"
)

// Status codes returned by HashOnce.
const (
	StatusOK     = 0
	StatusFailed = -1
)

// Fingerprinter computes descriptor fingerprints with a chosen digest. The
// zero value uses SHA-256, the only algorithm constant-time builds accept.
type Fingerprinter struct {
	Algorithm digest.Algorithm
}

// Compute is Fingerprinter{}.Compute.
func Compute(framed []byte) (Fingerprint, error) {
	return Fingerprinter{}.Compute(framed)
}

// ComputeDescriptor is Fingerprinter{}.ComputeDescriptor.
func ComputeDescriptor(d Descriptor) (Fingerprint, error) {
	return Fingerprinter{}.ComputeDescriptor(d)
}

// Compute splits a framed descriptor, canonicalizes both components and
// digests their assembly. A normalizer failure is returned as is and nothing
// is digested.
func (f Fingerprinter) Compute(framed []byte) (Fingerprint, error) {
	d, err := Split(framed)
	if err != nil {
		return Fingerprint{}, err
	}
	return f.ComputeDescriptor(d)
}

// ComputeDescriptor fingerprints an unframed descriptor. The component length
// limits of the framed form apply.
func (f Fingerprinter) ComputeDescriptor(d Descriptor) (Fingerprint, error) {
	if err := checkLimits(d); err != nil {
		return Fingerprint{}, err
	}
	if ConstantTime {
		if f.Algorithm != digest.SHA256 {
			return Fingerprint{}, newError(KindInternal, "RH-INTERNAL-002", "constant-time builds only support sha256, not "+f.Algorithm.String())
		}
		return computeCT(d)
	}
	return f.computeStd(d)
}

func (f Fingerprinter) computeStd(d Descriptor) (Fingerprint, error) {
	canon, err := canonicalizeStd(d)
	if err != nil {
		return Fingerprint{}, err
	}
	record := Assemble(canon)
	defer func() {
		clear(record)
		clear(canon.Reference)
		clear(canon.ContentType)
	}()
	sum, err := digest.Sum(f.Algorithm, record)
	if err != nil {
		return Fingerprint{}, wrapError(KindInternal, "RH-INTERNAL-001", "digest failed", err)
	}
	return Fingerprint(sum), nil
}

func computeCT(d Descriptor) (Fingerprint, error) {
	refBuf, refLen, refErr := normalizeReferenceCT(d.Reference)
	ctBuf, ctLen, ctErr := normalizeContentTypeCT(d.ContentType)
	defer func() {
		clear(refBuf)
		clear(ctBuf)
	}()
	if refErr != nil {
		return Fingerprint{}, refErr
	}
	if ctErr != nil {
		return Fingerprint{}, ctErr
	}
	record, n := assembleFixed(refBuf, refLen, ctBuf, ctLen)
	defer clear(record)
	return Fingerprint(digest.SumFixed(record, n)), nil
}

// Canonicalize returns the canonical form of both components of d as fresh
// slices.
func Canonicalize(d Descriptor) (Descriptor, error) {
	if err := checkLimits(d); err != nil {
		return Descriptor{}, err
	}
	if ConstantTime {
		ref, err := NormalizeReference(d.Reference)
		if err != nil {
			return Descriptor{}, err
		}
		contentType, err := NormalizeContentType(d.ContentType)
		if err != nil {
			return Descriptor{}, err
		}
		return Descriptor{Reference: ref, ContentType: contentType}, nil
	}
	return canonicalizeStd(d)
}

func canonicalizeStd(d Descriptor) (Descriptor, error) {
	ref, err := normalizeReferenceStd(d.Reference)
	if err != nil {
		return Descriptor{}, err
	}
	contentType, err := normalizeContentTypeStd(d.ContentType)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Reference: ref, ContentType: contentType}, nil
}

func checkLimits(d Descriptor) error {
	if len(d.Reference) > MaxReferenceLen || len(d.ContentType) > MaxContentTypeLen {
		return newError(KindMalformedInput, "RH-FRAME-005", "descriptor component exceeds maximum length")
	}
	return nil
}

// HashOnce is the boundary entry point. It fingerprints a framed descriptor
// into out and returns StatusOK, or returns StatusFailed and leaves out
// untouched. The cause of a failure is not reported; use Compute for that.
func HashOnce(framed []byte, out *[32]byte) int {
	if out == nil {
		return StatusFailed
	}
	fp, err := Compute(framed)
	if err != nil {
		return StatusFailed
	}
	*out = fp
	return StatusOK
}

// Equivalent reports whether two descriptors have the same canonical form.
func Equivalent(a, b Descriptor) (bool, error) {
	ca, err := Canonicalize(a)
	if err != nil {
		return false, err
	}
	cb, err := Canonicalize(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ca.Reference, cb.Reference) && bytes.Equal(ca.ContentType, cb.ContentType), nil
}
