package tool

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

var builtins = map[string]func() Adapter{}

func register(name string, factory func() Adapter) {
	builtins[name] = factory
}

// Get resolves an adapter by name. Lookup happens once at configuration
// time; callers treat the returned value as an opaque capability.
func Get(name string) (Adapter, error) {
	factory, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %q", name)
	}
	return factory(), nil
}

// BuiltinNames lists all registered adapter names, sorted.
func BuiltinNames() []string {
	names := lo.Keys(builtins)
	sort.Strings(names)
	return names
}
