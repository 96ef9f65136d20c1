package bundle_test

import (
	"fmt"
	"os"

	"github.com/matzehuels/pybundle/pkg/bundle"
)

func ExampleEncode() {
	sources := map[string]string{
		"/proj/utils.py": "def greet():\n    return 'hi'\n",
		"/proj/app.py":   "from utils import greet\nprint(greet())",
	}
	read := func(path string) ([]byte, error) { return []byte(sources[path]), nil }

	order := bundle.ForceLast([]string{"/proj/app.py", "/proj/utils.py"}, "/proj/app.py")
	_, _ = bundle.Encode(os.Stdout, order, "/proj", read)
	// Output:
	// ```
	// # Start of utils.py
	// def greet():
	//     return 'hi'
	// # End of utils.py
	// ```
	//
	// ```
	// # Start of app.py
	// from utils import greet
	// print(greet())
	// # End of app.py
	// ```
}

func ExampleForceLast() {
	fmt.Println(bundle.ForceLast([]string{"main.py", "a.py", "b.py"}, "main.py"))
	// Output:
	// [a.py b.py main.py]
}
