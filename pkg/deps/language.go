package deps

import "fmt"

// Language binds an extractor and resolver implementation to a source
// language.
type Language struct {
	Name         string
	Extensions   []string
	NewExtractor func() Extractor
	NewResolver  func(root string, opts Options) (Resolver, error)
}

// Resolver creates a resolver for the project at root.
func (l *Language) Resolver(root string, opts Options) (Resolver, error) {
	if l.NewResolver == nil {
		return nil, fmt.Errorf("%s: no resolver", l.Name)
	}
	return l.NewResolver(root, opts.WithDefaults())
}

// Extractor creates an import extractor.
func (l *Language) Extractor() Extractor {
	return l.NewExtractor()
}

// Supports reports whether path has one of the language's extensions.
func (l *Language) Supports(path string) bool {
	for _, ext := range l.Extensions {
		if len(path) > len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}
