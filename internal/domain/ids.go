package domain

// ContainsID reports whether id is present in ids.
func ContainsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// AppendID adds id to the ordered set ids, preserving order and
// returning ids unchanged if already present.
func AppendID(ids []string, id string) []string {
	if ContainsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

// RemoveID removes id from ids, preserving the order of the remaining
// elements. Returns ids unchanged if absent.
func RemoveID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
