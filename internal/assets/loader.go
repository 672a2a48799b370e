package assets

// StyleLoader loads a CSS stylesheet by name (without .css extension).
type StyleLoader interface {
	LoadStyle(name string) (string, error)
}
