package cas

// SetMaxRetries overrides the retry bound for tests.
func (r *Registry) SetMaxRetries(n int) {
	r.maxRetries = n
}
