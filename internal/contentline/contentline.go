package contentline

import (
	"strings"
)

// Param is one parameter occurrence. Quoted values keep their surrounding
// quotes so they are written back exactly as read.
type Param struct {
	Name   string
	Values []string
}

// Params keeps parameters in insertion order. The same name may occur more
// than once.
type Params []Param

// ContentLine is a single NAME;PARAM=VALUE:VALUE record. An empty Value is
// the absent value ("NAME:").
type ContentLine struct {
	Name   string
	Params Params
	Value  string
}

// New builds a content line with an upper-cased name.
func New(name, value string, params ...Param) ContentLine {
	return ContentLine{
		Name:   strings.ToUpper(name),
		Params: Params(params).Clone(),
		Value:  value,
	}
}

func (c ContentLine) HasValue() bool { return c.Value != "" }

// Clone returns a deep copy that shares no slices with c.
func (c ContentLine) Clone() ContentLine {
	c.Params = c.Params.Clone()
	return c
}

// Equal compares name, parameters and value.
func (c ContentLine) Equal(o ContentLine) bool {
	if c.Name != o.Name || c.Value != o.Value || len(c.Params) != len(o.Params) {
		return false
	}
	for i := range c.Params {
		a, b := c.Params[i], o.Params[i]
		if a.Name != b.Name || len(a.Values) != len(b.Values) {
			return false
		}
		for j := range a.Values {
			if a.Values[j] != b.Values[j] {
				return false
			}
		}
	}
	return true
}

func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for i, prm := range p {
		out[i] = Param{Name: prm.Name, Values: append([]string(nil), prm.Values...)}
	}
	return out
}

func (p Params) Has(name string) bool {
	name = strings.ToUpper(name)
	for _, prm := range p {
		if prm.Name == name {
			return true
		}
	}
	return false
}

// Get returns the first value of the named parameter with quotes removed.
func (p Params) Get(name string) (string, bool) {
	name = strings.ToUpper(name)
	for _, prm := range p {
		if prm.Name == name && len(prm.Values) > 0 {
			return Unquote(prm.Values[0]), true
		}
	}
	return "", false
}

// Values returns every value of every occurrence of name, unquoted.
func (p Params) Values(name string) []string {
	name = strings.ToUpper(name)
	var out []string
	for _, prm := range p {
		if prm.Name != name {
			continue
		}
		for _, v := range prm.Values {
			out = append(out, Unquote(v))
		}
	}
	return out
}

// Set replaces the first occurrence of name and drops any others, or appends
// a new parameter. The receiver is left untouched.
func (p Params) Set(name string, values ...string) Params {
	name = strings.ToUpper(name)
	out := make(Params, 0, len(p)+1)
	replaced := false
	for _, prm := range p {
		if prm.Name != name {
			out = append(out, Param{Name: prm.Name, Values: append([]string(nil), prm.Values...)})
			continue
		}
		if !replaced {
			out = append(out, Param{Name: name, Values: append([]string(nil), values...)})
			replaced = true
		}
	}
	if !replaced {
		out = append(out, Param{Name: name, Values: append([]string(nil), values...)})
	}
	return out
}

// Remove drops every occurrence of name. The receiver is left untouched.
func (p Params) Remove(name string) Params {
	name = strings.ToUpper(name)
	var out Params
	for _, prm := range p {
		if prm.Name == name {
			continue
		}
		out = append(out, Param{Name: prm.Name, Values: append([]string(nil), prm.Values...)})
	}
	return out
}

// Unquote strips a matching pair of double quotes.
func Unquote(v string) string {
	if !isQuoted(v) {
		return v
	}
	return v[1 : len(v)-1]
}

func isQuoted(v string) bool {
	return len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"'
}
