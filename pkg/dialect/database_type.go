// Package dialect names the SQL dialects the parsing rules are defined for.
package dialect

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DatabaseType is a closed enumeration of supported SQL dialects.
type DatabaseType int

const (
	// MySQL covers MySQL and MariaDB.
	MySQL DatabaseType = iota + 1
	// PostgreSQL covers PostgreSQL and wire-compatible engines.
	PostgreSQL
)

var displayNames = map[DatabaseType]string{
	MySQL:      "MySQL",
	PostgreSQL: "PostgreSQL",
}

// toLower lowercases s. A cases.Caser is stateful, so each call gets its own.
func toLower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// String returns the display name, e.g. "MySQL".
func (t DatabaseType) String() string {
	if name, ok := displayNames[t]; ok {
		return name
	}
	return fmt.Sprintf("DatabaseType(%d)", int(t))
}

// Name returns the lowercase name used in rule-definition paths and
// configuration, e.g. "mysql".
func (t DatabaseType) Name() string {
	return toLower(t.String())
}

// IsValid reports whether t is one of the declared dialects.
func (t DatabaseType) IsValid() bool {
	_, ok := displayNames[t]
	return ok
}

// Parse resolves a dialect name case-insensitively. "postgres" is accepted
// as an alias for PostgreSQL.
func Parse(name string) (DatabaseType, error) {
	normalized := toLower(name)
	if normalized == "postgres" {
		return PostgreSQL, nil
	}
	for t := range displayNames {
		if t.Name() == normalized {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown database type %q", name)
}

// All returns every declared dialect in declaration order.
func All() []DatabaseType {
	return []DatabaseType{MySQL, PostgreSQL}
}

// MarshalText encodes the lowercase name.
func (t DatabaseType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid database type %d", int(t))
	}
	return []byte(t.Name()), nil
}

// UnmarshalText decodes a name accepted by Parse.
func (t *DatabaseType) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
