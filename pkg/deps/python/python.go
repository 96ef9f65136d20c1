package python

import (
	"os"

	"github.com/matzehuels/pybundle/pkg/deps"
)

// Language provides Python import extraction and project-local resolution.
var Language = &deps.Language{
	Name:         "python",
	Extensions:   []string{".py"},
	NewExtractor: func() deps.Extractor { return NewExtractor() },
	NewResolver:  newResolver,
}

// newResolver builds a resolver whose locator scans opts.SearchPaths and,
// unless disabled, the interpreter directories found on this machine.
func newResolver(root string, opts deps.Options) (deps.Resolver, error) {
	paths := opts.SearchPaths
	if !opts.NoSystemPaths {
		paths = append(paths[:len(paths):len(paths)], DiscoverSystemPaths(os.Getenv)...)
	}
	loc, err := NewCachedLocator(NewSearchPathLocator(paths...), opts.CacheSize)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("module search path", "dirs", len(paths))
	return NewResolver(root, loc, opts)
}
