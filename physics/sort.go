package physics

// InsertionSortBy sorts s in place and keeps equal elements in order. It is
// linear on input that is already nearly sorted, which is the common case
// for a roster re-sorted every frame.
func InsertionSortBy[T any](s []T, less func(a, b T) bool) {
	for i := 1; i < len(s); i++ {
		key := s[i]
		j := i - 1
		for j >= 0 && less(key, s[j]) {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = key
	}
}
