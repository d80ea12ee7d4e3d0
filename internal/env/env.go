// Package env holds the key/value store that launch templates such as
// "${auth_player_name}" are resolved against.
package env

import (
	"log/slog"
	"regexp"
	"sort"
)

var tokenPattern = regexp.MustCompile(`\$\{([^}]*)\}`)

// Environment is a string key/value store. It is not safe for concurrent
// use; each launch attempt owns its own clone.
type Environment struct {
	values map[string]string
	logger *slog.Logger
}

// New returns an empty environment that reports unresolved keys to the
// default logger.
func New() *Environment {
	return &Environment{values: make(map[string]string)}
}

// FromMap returns an environment seeded with values.
func FromMap(values map[string]string) *Environment {
	e := New()
	for k, v := range values {
		e.values[k] = v
	}
	return e
}

// WithLogger sets the logger unresolved keys are reported to.
func (e *Environment) WithLogger(logger *slog.Logger) *Environment {
	e.logger = logger
	return e
}

// Set inserts or overwrites key.
func (e *Environment) Set(key, value string) {
	e.values[key] = value
}

// Get returns the value bound to key.
func (e *Environment) Get(key string) (string, bool) {
	v, ok := e.values[key]
	return v, ok
}

// Remove deletes key. Removing an absent key is a no-op.
func (e *Environment) Remove(key string) {
	delete(e.values, key)
}

// Keys returns the bound keys in sorted order.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of bound keys.
func (e *Environment) Len() int {
	return len(e.values)
}

// Clone returns an independent copy sharing the logger.
func (e *Environment) Clone() *Environment {
	c := FromMap(e.values)
	c.logger = e.logger
	return c
}

// Resolve replaces every ${key} token in template with its bound value.
// Text outside tokens is copied unchanged. An unbound key resolves to the
// empty string and is logged once per occurrence.
func (e *Environment) Resolve(template string) string {
	return tokenPattern.ReplaceAllStringFunc(template, func(token string) string {
		key := token[2 : len(token)-1]
		if v, ok := e.values[key]; ok {
			return v
		}
		e.log().Warn("unresolved template key", "key", key, "template", template)
		return ""
	})
}

// ResolveAll resolves every template in order.
func (e *Environment) ResolveAll(templates []string) []string {
	out := make([]string, len(templates))
	for i, t := range templates {
		out[i] = e.Resolve(t)
	}
	return out
}

func (e *Environment) log() *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return slog.Default()
}
