package export

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	formats   = make(map[string]func() Format)
	formatsMu sync.RWMutex
)

func init() {
	RegisterFormat("csv", func() Format { return NewCSV() })
	RegisterFormat("xlsx", func() Format { return NewXLSX() })
}

// RegisterFormat adds a format factory under name.
// Panics if the name is already registered.
func RegisterFormat(name string, factory func() Format) {
	formatsMu.Lock()
	defer formatsMu.Unlock()

	key := strings.ToLower(name)
	if _, exists := formats[key]; exists {
		panic(fmt.Sprintf("export format already registered: %s", name))
	}
	formats[key] = factory
}

// LookupFormat returns a new instance of the named format.
// An empty name selects CSV.
func LookupFormat(name string) (Format, error) {
	if name == "" {
		name = "csv"
	}

	formatsMu.RLock()
	factory, ok := formats[strings.ToLower(name)]
	formatsMu.RUnlock()

	if !ok {
		return nil, &ConfigurationError{Kind: KindUnknownFormat, Detail: name}
	}
	return factory(), nil
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
