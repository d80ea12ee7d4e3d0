package minecraft

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Arguments is the structured argument form introduced in 1.13.
type Arguments struct {
	Game []Argument `json:"game"`
	JVM  []Argument `json:"jvm"`
}

// Argument is either a literal string, always passed, or a rule-gated value.
// Exactly one of Literal and Conditional is meaningful; IsConditional tells
// which.
type Argument struct {
	Literal     string
	Conditional *ConditionalArgument
}

// ConditionalArgument is passed only when its rules are satisfied.
type ConditionalArgument struct {
	Rules []Rule       `json:"rules"`
	Value StringOrList `json:"value"`
}

// IsConditional reports whether the argument is rule-gated.
func (a Argument) IsConditional() bool {
	return a.Conditional != nil
}

// UnmarshalJSON accepts a JSON string first, then a {rules, value} object.
func (a *Argument) UnmarshalJSON(data []byte) error {
	var literal string
	if err := json.Unmarshal(data, &literal); err == nil {
		*a = Argument{Literal: literal}
		return nil
	}

	var cond ConditionalArgument
	if err := json.Unmarshal(data, &cond); err != nil {
		return fmt.Errorf("argument is neither a string nor a conditional object: %w", err)
	}
	*a = Argument{Conditional: &cond}
	return nil
}

// MarshalJSON writes the argument back in the shape it was read from.
func (a Argument) MarshalJSON() ([]byte, error) {
	if a.Conditional != nil {
		return json.Marshal(a.Conditional)
	}
	return json.Marshal(a.Literal)
}

// StringOrList holds a value declared as a single string or a list of
// strings. Values keeps declaration order; Single records the shape.
type StringOrList struct {
	Values []string
	Single bool
}

// UnmarshalJSON accepts a JSON string first, then an array of strings.
func (v *StringOrList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*v = StringOrList{Values: []string{single}, Single: true}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("value is neither a string nor a list of strings: %w", err)
	}
	*v = StringOrList{Values: list}
	return nil
}

// MarshalJSON writes the value back in its declared shape.
func (v StringOrList) MarshalJSON() ([]byte, error) {
	if v.Single && len(v.Values) == 1 {
		return json.Marshal(v.Values[0])
	}
	if v.Values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.Values)
}
