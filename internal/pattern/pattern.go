// SPDX-License-Identifier: Apache-2.0

// Package pattern holds the static migration mapping tables shared by every
// transformer: import path rewrites, operator class rewrites, deprecated
// call-site parameters, connection type renames and plugin base-class
// fragments.
//
// A Table is built once at startup and injected into each component at
// construction time. It is never mutated after construction, so concurrent
// readers are safe without locking.
package pattern

// Table is the immutable set of migration mappings.
type Table struct {
	importMap        map[string]string
	operatorMap      map[string]string
	deprecatedParams map[string]struct{}
	connTypeMap      map[string]string
	providerPaths    map[string]string
	baseClassKinds   map[string]string
}

// Option customizes a Table during construction. The observed rename
// vocabulary is small; options keep it extensible without reopening the
// defaults.
type Option func(*Table)

// WithImportMapping adds or overrides a single import path mapping.
func WithImportMapping(oldPath, newPath string) Option {
	return func(t *Table) {
		t.importMap[oldPath] = newPath
	}
}

// WithOperatorMapping adds or overrides a bare-class-name to fully qualified
// class mapping.
func WithOperatorMapping(className, qualified string) Option {
	return func(t *Table) {
		t.operatorMap[className] = qualified
	}
}

// WithDeprecatedParam registers an additional call-site parameter to strip.
func WithDeprecatedParam(name string) Option {
	return func(t *Table) {
		t.deprecatedParams[name] = struct{}{}
	}
}

// WithConnTypeMapping adds or overrides a connection type rename.
func WithConnTypeMapping(oldType, newType string) Option {
	return func(t *Table) {
		t.connTypeMap[oldType] = newType
	}
}

// New builds a Table from the default vocabulary plus any options.
func New(opts ...Option) *Table {
	t := &Table{
		importMap:        defaultImportMap(),
		operatorMap:      defaultOperatorMap(),
		deprecatedParams: defaultDeprecatedParams(),
		connTypeMap:      defaultConnTypeMap(),
		providerPaths:    defaultProviderPaths(),
		baseClassKinds:   defaultBaseClassKinds(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Default returns a Table with the built-in vocabulary only.
func Default() *Table {
	return New()
}

// LookupImport returns the replacement module path for an old dotted module
// path, if one is mapped.
func (t *Table) LookupImport(modulePath string) (string, bool) {
	v, ok := t.importMap[modulePath]
	return v, ok
}

// LookupOperator returns the fully qualified replacement class for a bare
// operator class name, if one is mapped.
func (t *Table) LookupOperator(className string) (string, bool) {
	v, ok := t.operatorMap[className]
	return v, ok
}

// IsDeprecatedParam reports whether the named call-site parameter must be
// stripped from migrated operator invocations.
func (t *Table) IsDeprecatedParam(name string) bool {
	_, ok := t.deprecatedParams[name]
	return ok
}

// DeprecatedParams returns a copy of the deprecated parameter names.
func (t *Table) DeprecatedParams() []string {
	names := make([]string, 0, len(t.deprecatedParams))
	for name := range t.deprecatedParams {
		names = append(names, name)
	}
	return names
}

// MappedOperators returns the bare class names the operator map rewrites.
func (t *Table) MappedOperators() []string {
	names := make([]string, 0, len(t.operatorMap))
	for name := range t.operatorMap {
		names = append(names, name)
	}
	return names
}

// LookupConnType returns the replacement connection type, if one is mapped.
func (t *Table) LookupConnType(connType string) (string, bool) {
	v, ok := t.connTypeMap[connType]
	return v, ok
}

// ProviderPath returns the provider-package path segment (for example
// "google.cloud") for a provider fragment found in a module name.
func (t *Table) ProviderPath(fragment string) (string, bool) {
	v, ok := t.providerPaths[fragment]
	return v, ok
}

// ProviderFragments returns all known provider fragments, longest first is
// not guaranteed; callers that care about precedence should sort.
func (t *Table) ProviderFragments() []string {
	fragments := make([]string, 0, len(t.providerPaths))
	for f := range t.providerPaths {
		fragments = append(fragments, f)
	}
	return fragments
}

// ClassifyBase returns the plugin kind ("hook", "operator" or "sensor") for a
// known base-class fragment, or "" when the fragment is not recognized.
func (t *Table) ClassifyBase(baseClass string) string {
	return t.baseClassKinds[baseClass]
}

// BaseClassFragments returns the recognized base-class names.
func (t *Table) BaseClassFragments() []string {
	fragments := make([]string, 0, len(t.baseClassKinds))
	for f := range t.baseClassKinds {
		fragments = append(fragments, f)
	}
	return fragments
}
