package python

// builtinModules are compiled into the interpreter and have no defining
// file on disk (CPython's sys.builtin_module_names plus the frozen import
// machinery). A search-path scan cannot find them, so they are classified
// by name.
var builtinModules = map[string]bool{
	"_abc":                       true,
	"_ast":                       true,
	"_codecs":                    true,
	"_collections":               true,
	"_frozen_importlib":          true,
	"_frozen_importlib_external": true,
	"_functools":                 true,
	"_imp":                       true,
	"_io":                        true,
	"_locale":                    true,
	"_operator":                  true,
	"_signal":                    true,
	"_sre":                       true,
	"_stat":                      true,
	"_string":                    true,
	"_symtable":                  true,
	"_thread":                    true,
	"_tokenize":                  true,
	"_tracemalloc":               true,
	"_typing":                    true,
	"_warnings":                  true,
	"_weakref":                   true,
	"atexit":                     true,
	"builtins":                   true,
	"errno":                      true,
	"faulthandler":               true,
	"gc":                         true,
	"itertools":                  true,
	"marshal":                    true,
	"posix":                      true,
	"nt":                         true,
	"pwd":                        true,
	"sys":                        true,
	"time":                       true,
	"winreg":                     true,
	"xxsubtype":                  true,
	"zipimport":                  true,
}

// IsBuiltin reports whether the top-level module name is compiled into the
// interpreter.
func IsBuiltin(name string) bool { return builtinModules[name] }
