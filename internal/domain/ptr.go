package domain

// Ptr returns a pointer to v, for filling optional-presence fields.
func Ptr[T any](v T) *T { return &v }
