package service

// NextCode returns the short code for the next mapping given the current
// number of stored mappings. Codes start at 1.
//
// Reading the count and inserting are two separate store calls, so concurrent
// writers may compute the same code; Insert rejects all but one of them.
func NextCode(count int64) int64 {
	return count + 1
}
