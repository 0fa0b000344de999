// Package dispatch turns a command request into a pdd invocation and the
// invocation's result into the uniform {output, success, error} response.
package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	// KindAbsent is a flag with no value (JSON null).
	KindAbsent ValueKind = iota
	// KindScalar is a flag followed by one value.
	KindScalar
	// KindSequence is a flag repeated once per element.
	KindSequence
)

// Errors returned while decoding argument values.
var (
	ErrObjectValue = errors.New("argument values must be a string, number, boolean, array or null")
	ErrNestedValue = errors.New("array arguments may only contain strings, numbers, booleans or null")
)

// Value is a single argument value: Scalar, Sequence or Absent.
// The zero Value is Absent.
type Value struct {
	kind   ValueKind
	scalar string
	items  []string
}

// Scalar returns a Value holding s.
func Scalar(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// Sequence returns a Value holding items in order.
func Sequence(items ...string) Value {
	return Value{kind: KindSequence, items: slices.Clone(items)}
}

// Absent returns a Value for a flag without an argument.
func Absent() Value {
	return Value{}
}

// Kind reports which variant v holds.
func (v Value) Kind() ValueKind { return v.kind }

// String returns the scalar text. It is empty for other kinds.
func (v Value) String() string { return v.scalar }

// Items returns a copy of the sequence elements.
func (v Value) Items() []string { return slices.Clone(v.items) }

// Contains reports whether the scalar, or any sequence element, contains sub.
func (v Value) Contains(sub string) bool {
	switch v.kind {
	case KindScalar:
		return strings.Contains(v.scalar, sub)
	case KindSequence:
		return slices.ContainsFunc(v.items, func(s string) bool {
			return strings.Contains(s, sub)
		})
	}
	return false
}

// UnmarshalJSON decodes null, strings, numbers, booleans and arrays.
// Numbers and booleans keep their literal JSON text. Objects are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty argument value")
	}
	switch data[0] {
	case 'n':
		*v = Absent()
	case '{':
		return ErrObjectValue
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]string, 0, len(raw))
		for _, r := range raw {
			s, err := elementText(r)
			if err != nil {
				return err
			}
			items = append(items, s)
		}
		*v = Value{kind: KindSequence, items: items}
	default:
		s, err := elementText(data)
		if err != nil {
			return err
		}
		*v = Scalar(s)
	}
	return nil
}

// elementText converts a JSON scalar to its argument text. null becomes "".
func elementText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", nil
	}
	switch raw[0] {
	case 'n':
		return "", nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '[', '{':
		return "", ErrNestedValue
	}
	return string(raw), nil
}

// MarshalJSON encodes v as null, a string or an array of strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindScalar:
		return json.Marshal(v.scalar)
	case KindSequence:
		if v.items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.items)
	}
	return []byte("null"), nil
}

// Arg is one key/value pair of Args.
type Arg struct {
	Key   string
	Value Value
}

// Args is an ordered flag mapping. Order is the JSON insertion order.
type Args []Arg

// Get returns the value stored under key.
func (a Args) Get(key string) (Value, bool) {
	for _, arg := range a {
		if arg.Key == key {
			return arg.Value, true
		}
	}
	return Value{}, false
}

// Set replaces the value under key in place, or appends a new pair.
func (a *Args) Set(key string, v Value) {
	for i := range *a {
		if (*a)[i].Key == key {
			(*a)[i].Value = v
			return
		}
	}
	*a = append(*a, Arg{Key: key, Value: v})
}

// Clone returns a deep copy of a.
func (a Args) Clone() Args {
	if a == nil {
		return nil
	}
	out := make(Args, len(a))
	for i, arg := range a {
		out[i] = Arg{Key: arg.Key, Value: Value{kind: arg.Value.kind, scalar: arg.Value.scalar, items: slices.Clone(arg.Value.items)}}
	}
	return out
}

// Expand renders a into command-line tokens in order.
//
// Keys starting with "-" are used as-is; any other key gets a single "-"
// prefix, so "force" becomes "-force". A Sequence repeats the flag once per
// element, an Absent value emits the flag alone, and empty values emit the
// flag without a value token.
func (a Args) Expand() []string {
	var out []string
	for _, arg := range a {
		flag := arg.Key
		if !strings.HasPrefix(flag, "-") {
			flag = "-" + flag
		}
		switch arg.Value.kind {
		case KindSequence:
			for _, item := range arg.Value.items {
				out = append(out, flag)
				if item != "" {
					out = append(out, item)
				}
			}
		case KindAbsent:
			out = append(out, flag)
		default:
			out = append(out, flag)
			if arg.Value.scalar != "" {
				out = append(out, arg.Value.scalar)
			}
		}
	}
	return out
}

// UnmarshalJSON decodes a JSON object keeping key order. A repeated key
// keeps its first position and its last value.
func (a *Args) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*a = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("args must be a JSON object")
	}

	out := Args{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in args", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("args[%q]: %w", key, err)
		}
		out.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*a = out
	return nil
}

// MarshalJSON encodes a as a JSON object in order.
func (a Args) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, arg := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(arg.Key)
		if err != nil {
			return nil, err
		}
		val, err := arg.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Request asks for one pdd command to be run.
// Empty Prompt and Basename are treated as absent.
type Request struct {
	Command  string `json:"command"`
	Args     Args   `json:"args,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
	Basename string `json:"basename,omitempty"`
}

// Response is the uniform result shape. Error is null on success.
type Response struct {
	Output  string  `json:"output"`
	Success bool    `json:"success"`
	Error   *string `json:"error"`
}

// Success returns a successful Response carrying output.
func Success(output string) Response {
	return Response{Output: output, Success: true}
}

// Failure returns a failed Response with an empty output.
func Failure(msg string) Response {
	return Response{Success: false, Error: &msg}
}

// ErrorMessage returns the error text, or "" when there is none.
func (r Response) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}
