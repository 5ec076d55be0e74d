package ports

// Clipboard receives exported keyword lists. The concrete implementation
// writes to the system clipboard; writes can be rejected (no display, no
// clipboard utility installed) and the error is surfaced to the user.
type Clipboard interface {
	WriteText(text string) error
}
