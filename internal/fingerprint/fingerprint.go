// Package fingerprint produces stable content-identity hashes for resumes,
// job postings, prompts and tailoring input pairs.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// pairSeparator joins the two identifiers hashed by Pair.
const pairSeparator = ":"

// Size is the length of every fingerprint in hex characters.
const Size = sha256.Size * 2

// Text returns the lowercase hex SHA-256 of s encoded as UTF-8.
// Invalid UTF-8 sequences are replaced with U+FFFD before hashing.
func Text(s string) string {
	return sum([]byte(strings.ToValidUTF8(s, "\uFFFD")))
}

// Bytes fingerprints raw material that is expected to be UTF-8 text.
func Bytes(b []byte) string {
	return Text(string(b))
}

// Pair returns the signature of an ordered identifier pair.
// Pair(a, b) differs from Pair(b, a) whenever a != b.
func Pair(a, b string) string {
	return Text(a + pairSeparator + b)
}

// Prompt hashes the material handed to a rewrite provider.
func Prompt(source, target string) string {
	return Text(source + target)
}

// PostingMaterial picks the text a posting fingerprint is computed over:
// the full posting text, or the title when the text is absent.
func PostingMaterial(rawText, title string) string {
	if rawText != "" {
		return rawText
	}
	return title
}

// PostingIdentity returns the duplicate-detection hash of a posting
// (URL, then raw text, then title).
func PostingIdentity(url, rawText, title string) string {
	if url != "" {
		return Text(url)
	}
	return Text(PostingMaterial(rawText, title))
}

func sum(b []byte) string {
	digest := sha256.Sum256(b)
	return hex.EncodeToString(digest[:])
}
