package codegen

import (
	"strings"

	"github.com/hashicorp/go-set/v2"
)

// IncludeFilter selects the services and methods to generate.
// An empty filter selects everything.
type IncludeFilter struct {
	suffix string
	// nil method set means the whole service
	services map[string]*set.Set[string]
}

// NewIncludeFilter parses include rules of the form "Service" or "Service.method".
// Service names match with or without the service name suffix.
func NewIncludeFilter(rules []string, suffix string) *IncludeFilter {
	f := &IncludeFilter{
		suffix:   suffix,
		services: make(map[string]*set.Set[string]),
	}

	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}

		service, method, hasMethod := strings.Cut(rule, ".")
		service = f.normalize(service)

		methods, seen := f.services[service]
		if !hasMethod {
			f.services[service] = nil
			continue
		}
		if seen && methods == nil {
			continue
		}
		if methods == nil {
			methods = set.New[string](4)
			f.services[service] = methods
		}
		methods.Insert(method)
	}
	return f
}

func (f *IncludeFilter) normalize(service string) string {
	if f.suffix != "" && service != f.suffix {
		service = strings.TrimSuffix(service, f.suffix)
	}
	return service
}

// IsEmpty reports whether the filter selects everything
func (f *IncludeFilter) IsEmpty() bool {
	return f == nil || len(f.services) == 0
}

// AllowsService reports whether any method of service may be generated
func (f *IncludeFilter) AllowsService(service string) bool {
	if f.IsEmpty() {
		return true
	}
	_, ok := f.services[f.normalize(service)]
	return ok
}

// Allows reports whether method of service is generated
func (f *IncludeFilter) Allows(service, method string) bool {
	if f.IsEmpty() {
		return true
	}
	methods, ok := f.services[f.normalize(service)]
	if !ok {
		return false
	}
	return methods == nil || methods.Contains(method)
}

// MatchesURLFilters reports whether path is kept by the url filters: a path is
// kept when some filter string contains it. No filters keep every path.
func MatchesURLFilters(filters []string, path string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, filter := range filters {
		if strings.Contains(filter, path) {
			return true
		}
	}
	return false
}
