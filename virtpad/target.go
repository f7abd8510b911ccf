package virtpad

// Target receives reconciled frames. Implementations own the underlying
// virtual device lifecycle; Push delivers one full frame, Close unplugs.
type Target interface {
	Push(Frame) error
	Close() error
}
