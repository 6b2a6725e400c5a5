// Package canon rewrites generated SVG markup into a canonical form so that
// re-rendering the same chart produces byte-identical, diff-friendly output.
//
// Chart renderers emit random hex-suffixed internal identifiers (clip paths,
// patterns, link anchors) and excess floating-point precision; both defeat
// version-control diffing. Canonicalization is a pure text-to-text transform
// of three stages run in strict order over one in-memory buffer:
//
//  1. attribute rewrite: xlink:href becomes href
//  2. numeric normalization: decimal literals in path data and graphical
//     attributes are rewritten to one fractional digit
//  3. identifier renumbering: auto-generated ids and all their reference
//     sites are renamed to short sequential names (p1, m2, link3, ...)
//
// The transform is idempotent: canonicalizing canonical output is a no-op.
package canon

import (
	"encoding/hex"
	"os"

	"github.com/zeebo/blake3"

	apperrors "github.com/chartproof/chartproof/core/errors"
	"github.com/chartproof/chartproof/internal/fileutil"
)

// Canonicalize runs the full pass pipeline over a document. Stage order is
// part of the contract: numeric rewriting must not see attribute values that
// belong to identifiers, and renumbering runs on the numerically settled text.
func Canonicalize(doc string) string {
	doc = RewriteLinkAttrs(doc)
	doc = NormalizeNumbers(doc)
	doc = stripTrailingWhitespace(doc)
	doc = RenumberIDs(doc)
	return doc
}

// File canonicalizes the file at inputPath. With outputPath empty the input
// file is overwritten in place; otherwise the input is left untouched and
// the result is written to outputPath. The document is read once, rewritten
// fully in memory, and written once, so a crash mid-process can never leave
// a half-rewritten file behind.
func File(inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &apperrors.NotFoundError{Resource: "input file", ID: inputPath, Err: err}
		}
		return apperrors.NewIO("read", inputPath, err)
	}

	out := Canonicalize(string(data))

	dst := outputPath
	if dst == "" {
		dst = inputPath
	}
	if err := fileutil.WriteFileAtomic(dst, []byte(out), 0644); err != nil {
		return apperrors.NewIO("write", dst, err)
	}
	return nil
}

// Digest returns the hex-encoded BLAKE3 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// CheckFile reports whether the file at path is already canonical, along
// with the BLAKE3 digests of its current and canonical forms. Nothing is
// written to disk.
func CheckFile(path string) (canonical bool, got, want string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, "", "", &apperrors.NotFoundError{Resource: "input file", ID: path, Err: err}
		}
		return false, "", "", apperrors.NewIO("read", path, err)
	}
	got = Digest(data)
	want = Digest([]byte(Canonicalize(string(data))))
	return got == want, got, want, nil
}
