// Package dialect provides SQL dialect definitions used by adapters.
//
// A dialect owns identifier quoting, the native-to-logical type map, and the
// literals a backend uses for booleans and "current timestamp" defaults.
// Literal formatting of values is delegated to a Converter bound with
// NewFormatter. Concrete dialects are registered from pkg/adapters/*/dialect.
package dialect

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/leapsqlite/pkg/core"
)

// IdentifierConfig defines how identifiers are quoted.
type IdentifierConfig struct {
	Quote    string // Quote character: ", `, [
	QuoteEnd string // End quote character (usually same as Quote, ] for [)
	Escape   string // Escape sequence: "", ``, ]]
}

// Converter renders application values as SQL literals.
type Converter interface {
	ToDatasource(f core.Field, v any) (string, error)
}

// Dialect represents a SQL dialect configuration.
type Dialect struct {
	Name        string
	Identifiers IdentifierConfig

	types    map[string]core.LogicalType // upper-case native type -> logical type
	affinity func(native string) core.LogicalType

	currentTimestamp map[string]struct{}
	trueLiterals     map[string]struct{}
	falseLiterals    map[string]struct{}
	reservedWords    map[string]struct{}
}

// Quote quotes an identifier using the dialect's quote characters.
func (d *Dialect) Quote(name string) string {
	// Escape any existing quote end characters in the name (e.g., ] -> ]])
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// QuoteIfNeeded quotes an identifier only if it is a reserved word or
// contains characters outside [A-Za-z0-9_].
func (d *Dialect) QuoteIfNeeded(name string) string {
	if d.IsReservedWord(name) || !isBareIdentifier(name) {
		return d.Quote(name)
	}
	return name
}

// IsReservedWord returns true if the word needs quoting when used as an identifier.
func (d *Dialect) IsReservedWord(word string) bool {
	_, ok := d.reservedWords[strings.ToLower(word)]
	return ok
}

// Mapped returns the logical type for a field's native storage type (Field.Use).
func (d *Dialect) Mapped(f core.Field) core.LogicalType {
	return d.TypeOf(f.Use)
}

// TypeOf returns the logical type for a native base type name such as "VARCHAR".
// Names missing from the type map fall back to the dialect's affinity rules.
func (d *Dialect) TypeOf(native string) core.LogicalType {
	key := normalizeType(native)
	if t, ok := d.types[key]; ok {
		return t
	}
	if d.affinity != nil {
		return d.affinity(key)
	}
	return core.TypeDefault
}

// DataTypes returns the native type names in the type map, sorted.
func (d *Dialect) DataTypes() []string {
	names := make([]string, 0, len(d.types))
	for name := range d.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsCurrentTimestamp reports whether a default literal is evaluated by the
// backend at write time (CURRENT_TIMESTAMP and friends).
func (d *Dialect) IsCurrentTimestamp(literal string) bool {
	_, ok := d.currentTimestamp[normalizeLiteral(literal)]
	return ok
}

// BoolLiteral interprets a backend boolean literal. ok is false when the
// literal is not a known boolean spelling.
func (d *Dialect) BoolLiteral(literal string) (value bool, ok bool) {
	key := normalizeLiteral(literal)
	if _, found := d.trueLiterals[key]; found {
		return true, true
	}
	if _, found := d.falseLiterals[key]; found {
		return false, true
	}
	return false, false
}

// normalizeType upper-cases a type name and collapses inner whitespace.
func normalizeType(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}

// normalizeLiteral strips wrapping parentheses and quotes, removes
// whitespace, and upper-cases a default literal.
func normalizeLiteral(s string) string {
	s = strings.TrimSpace(s)
	for len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = s[1 : len(s)-1]
	}
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

func isBareIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// ---------- Formatter ----------

// Formatter binds a dialect to the converter used for value literals.
type Formatter struct {
	dialect   *Dialect
	converter Converter
}

// NewFormatter returns a formatter that renders values through conv.
func NewFormatter(d *Dialect, conv Converter) *Formatter {
	return &Formatter{dialect: d, converter: conv}
}

// Quote quotes an identifier.
func (f *Formatter) Quote(name string) string {
	return f.dialect.Quote(name)
}

// Value renders raw as a SQL literal for the given field.
func (f *Formatter) Value(raw any, field core.Field) (string, error) {
	return f.converter.ToDatasource(field, raw)
}

// ---------- Builder ----------

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

// NewDialect creates a new dialect builder with the given name.
func NewDialect(name string) *Builder {
	return &Builder{
		dialect: &Dialect{
			Name: name,
			Identifiers: IdentifierConfig{
				Quote:    `"`,
				QuoteEnd: `"`,
				Escape:   `""`,
			},
			types:            make(map[string]core.LogicalType),
			currentTimestamp: make(map[string]struct{}),
			trueLiterals:     make(map[string]struct{}),
			falseLiterals:    make(map[string]struct{}),
			reservedWords:    make(map[string]struct{}),
		},
	}
}

// Identifiers configures identifier quoting.
func (b *Builder) Identifiers(quote, quoteEnd, escape string) *Builder {
	b.dialect.Identifiers = IdentifierConfig{
		Quote:    quote,
		QuoteEnd: quoteEnd,
		Escape:   escape,
	}
	return b
}

// Types maps native type names to a logical type.
func (b *Builder) Types(logical core.LogicalType, natives ...string) *Builder {
	for _, n := range natives {
		b.dialect.types[normalizeType(n)] = logical
	}
	return b
}

// Affinity sets the fallback used for native types missing from the type map.
// The function receives the upper-cased native name.
func (b *Builder) Affinity(fn func(native string) core.LogicalType) *Builder {
	b.dialect.affinity = fn
	return b
}

// CurrentTimestamp registers default literals that the backend evaluates at write time.
func (b *Builder) CurrentTimestamp(literals ...string) *Builder {
	for _, l := range literals {
		b.dialect.currentTimestamp[normalizeLiteral(l)] = struct{}{}
	}
	return b
}

// BoolLiterals registers the backend's spellings of true and false.
func (b *Builder) BoolLiterals(truthy, falsy []string) *Builder {
	for _, l := range truthy {
		b.dialect.trueLiterals[normalizeLiteral(l)] = struct{}{}
	}
	for _, l := range falsy {
		b.dialect.falseLiterals[normalizeLiteral(l)] = struct{}{}
	}
	return b
}

// WithReservedWords adds words that must be quoted when used as identifiers.
func (b *Builder) WithReservedWords(words ...string) *Builder {
	for _, w := range words {
		b.dialect.reservedWords[strings.ToLower(w)] = struct{}{}
	}
	return b
}

// Build returns the constructed dialect.
func (b *Builder) Build() *Dialect {
	return b.dialect
}
