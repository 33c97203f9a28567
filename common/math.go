package common

// AlignUp rounds n up to the next multiple of align. align must be non-zero.
//
// Parameters:
//   - n: the value to round
//   - align: the alignment
//
// Returns:
//   - uint32: the aligned value
func AlignUp(n, align uint32) uint32 {
	return (n + align - 1) / align * align
}
