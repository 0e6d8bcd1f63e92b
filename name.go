package tinyfat

import "golang.org/x/text/unicode/norm"

// validateName normalizes name to NFC and checks it against the 55-byte
// ASCII budget a dirEntry can hold. Normalizing first means visually
// identical names composed differently (e.g. precomposed vs. combining
// accents) are judged consistently rather than accepted or rejected
// depending on byte representation — this format has no LFN/codepage
// machinery of its own to paper over that, unlike the teacher's FAT32
// long-filename support (see SPEC_FULL.md §11).
func validateName(op, name string) (string, error) {
	normalized := norm.NFC.String(name)
	if normalized == "" {
		return "", newErr(op, name, InvalidArgument, "empty name")
	}
	if len(normalized) > MaxNameLen {
		return "", newErr(op, name, InvalidArgument, "name exceeds 55 bytes")
	}
	for i := 0; i < len(normalized); i++ {
		c := normalized[i]
		if c < 0x20 || c > 0x7e || c == '/' {
			return "", newErr(op, name, InvalidArgument, "name must be printable ASCII excluding '/'")
		}
	}
	return normalized, nil
}
