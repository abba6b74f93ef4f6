// Package config implements the layered, deep-merging configuration
// stack (C1) that the music transformer and the layout engine consult for
// every resolved setting: defaults, instrument presets, per-extract
// overrides, and live user edits all compose as layers on this stack.
//
// A layer is a nested map[string]any. Leaves may be scalars, slices,
// further maps, or Thunks -- zero-argument producers evaluated lazily and
// cached by the dotted path at which they are resolved, the way a harp's
// string names are derived once from the chosen instrument and then
// reused until the instrument changes.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/veeh-harfe/zupfnoter/internal/harperr"
)

// Thunk is a deferred configuration value. It is tagged explicitly (rather
// than relying on a bare func type) so that resolved values can be told
// apart from thunks when a layer is serialized.
type Thunk func() any

// Stack is a stack of configuration layers. Layer 0 starts as the empty
// map and is never popped.
type Stack struct {
	layers []map[string]any
	cache map[string]any // dotted path -> resolved value, invalidated on push/pop/set

	// resolving is the dotted-path chain of thunks currently being
	// evaluated. It lives on the Stack, not on the call stack, because a
	// thunk's body re-enters through Resolve with a fresh Go call stack --
	// tracking the chain locally would lose it exactly when a thunk calls
	// back into another thunk, which is the case cycle detection exists for.
	resolving []string

	// cycleErr holds a cycle found while an outermost thunk is resolving. A
	// thunk body may drop the error its own Resolve call returned, so the
	// outermost resolution reports it from here.
	cycleErr error
}

// NewStack returns a Stack with a single, empty layer 0.
func NewStack() *Stack {
	return &Stack{
		layers: []map[string]any{{}},
		cache: map[string]any{},
	}
}

// Depth returns the number of layers currently on the stack.
func (s *Stack) Depth() int {
	return len(s.layers)
}

// Push deep-merges mapping onto the current top layer and pushes the
// result as a new layer. The layer being merged onto is never mutated.
func (s *Stack) Push(mapping map[string]any) int {
	top:= s.layers[len(s.layers)-1]
	merged:= deepMerge(cloneMap(top), mapping)
	s.layers = append(s.layers, merged)
	s.invalidate()
	return len(s.layers)
}

// Pop removes the top layer, unless doing so would remove layer 0, in
// which case it is a silent no-op.
func (s *Stack) Pop() int {
	if len(s.layers) > 1 {
		s.layers = s.layers[:len(s.layers)-1]
	}
	s.invalidate()
	return len(s.layers)
}

// ResetTo truncates the stack back to the given depth (1-indexed: depth 1
// is layer 0 alone). Values out of range are clamped.
func (s *Stack) ResetTo(level int) int {
	if level < 1 {
		level = 1
	}
	if level > len(s.layers) {
		level = len(s.layers)
	}
	s.layers = s.layers[:level]
	s.invalidate()
	return len(s.layers)
}

func (s *Stack) invalidate() {
	s.cache = map[string]any{}
}

// deepMerge merges src onto dst (dst is mutated and returned). For every
// key present in both, if both values are maps, recurse; a nil value in
// src erases the key. Sequences and thunks always replace wholesale.
func deepMerge(dst, src map[string]any) map[string]any {
	for k, v:= range src {
		if v == nil {
			delete(dst, k)
			continue
		}
		if srcMap, ok:= v.(map[string]any); ok {
			if dstMap, ok:= dst[k].(map[string]any); ok {
				dst[k] = deepMerge(cloneMap(dstMap), srcMap)
				continue
			}
		}
		dst[k] = v
	}
	return dst
}

func cloneMap(m map[string]any) map[string]any {
	out:= make(map[string]any, len(m))
	for k, v:= range m {
		if sub, ok:= v.(map[string]any); ok {
			out[k] = cloneMap(sub)
			continue
		}
		out[k] = v
	}
	return out
}

// Get returns the value at the dotted path in the top layer. An empty
// path returns the whole top layer. When resolve is true, Thunks
// encountered along the way (including the target value itself) are
// invoked and cached by the dotted path at which they were found (a
// Thunk, being a bare func, is not itself a comparable map key in Go, so
// its tree position stands in for producer identity); maps and slices
// are walked recursively so nested thunks resolve too. Cycle detection is
// keyed by that same dotted path: two different config paths that happen
// to share a producer are not a cycle, but a path that (directly or
// transitively) reads itself is.
func (s *Stack) Get(path string, resolve bool) (any, error) {
	top:= s.layers[len(s.layers)-1]
	v, ok:= lookup(top, splitPath(path))
	if !ok {
		return nil, nil
	}
	if !resolve {
		return v, nil
	}
	label:= path
	if label == "" {
		label = "<root>"
	}
	return s.resolveAtPath(v, label)
}

// Resolve is shorthand for Get(path, true).
func (s *Stack) Resolve(path string) (any, error) {
	return s.Get(path, true)
}

func (s *Stack) resolveAtPath(v any, path string) (any, error) {
	switch t:= v.(type) {
	case Thunk:
		if cached, ok:= s.cache[path]; ok {
			return cached, nil
		}
		for _, p:= range s.resolving {
			if p == path {
				cycle:= append(append([]string{}, s.resolving...), path)
				err:= &harperr.ConfigError{Cycle: cycle}
				if s.cycleErr == nil {
					s.cycleErr = err
				}
				return nil, err
			}
		}
		s.resolving = append(s.resolving, path)
		defer func() { s.resolving = s.resolving[:len(s.resolving)-1] }()
		result:= t()
		if s.cycleErr != nil {
			err:= s.cycleErr
			if len(s.resolving) == 1 {
				s.cycleErr = nil
			}
			return nil, err
		}
		resolved, err:= s.resolveAtPath(result, path)
		if err != nil {
			return nil, err
		}
		s.cache[path] = resolved
		return resolved, nil
	case map[string]any:
		out:= make(map[string]any, len(t))
		for k, sub:= range t {
			rv, err:= s.resolveAtPath(sub, path+"."+k)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil
	case []any:
		out:= make([]any, len(t))
		for i, sub:= range t {
			rv, err:= s.resolveAtPath(sub, fmt.Sprintf("%s.%d", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	default:
		return v, nil
	}
}

// Set writes value at the dotted path in the top layer, creating
// intermediate maps as needed. A nil value deletes the path (Delete).
// Numeric path segments address an existing slice index transparently;
// otherwise they create/extend a map with that segment as a string key.
func (s *Stack) Set(path string, value any) {
	defer s.invalidate()
	top:= s.layers[len(s.layers)-1]
	segs:= splitPath(path)
	setAt(top, segs, value)
}

// Delete removes the value at path (equivalent to Set(path, nil)).
func (s *Stack) Delete(path string) {
	s.Set(path, nil)
}

// Keys returns every dotted path to a leaf or non-leaf map in the top
// layer, in pre-order.
func (s *Stack) Keys() []string {
	var out []string
	collectKeys(s.layers[len(s.layers)-1], "", &out)
	return out
}

func collectKeys(v any, prefix string, out *[]string) {
	m, ok:= v.(map[string]any)
	if !ok {
		return
	}
	for k, sub:= range m {
		p:= k
		if prefix != "" {
			p = prefix + "." + k
		}
		*out = append(*out, p)
		collectKeys(sub, p, out)
	}
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

func lookup(root any, segs []string) (any, bool) {
	cur:= root
	for _, seg:= range segs {
		switch c:= cur.(type) {
		case map[string]any:
			v, ok:= c[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err:= strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(c) {
				return nil, false
			}
			cur = c[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// setAt writes value at segs under root (a map[string]any), creating
// intermediate maps as needed. A numeric segment addresses a sequence
// element when the current value there is already a slice; otherwise it
// behaves like any other map key.
func setAt(root map[string]any, segs []string, value any) {
	if len(segs) == 0 {
		return
	}
	key:= segs[0]
	if len(segs) == 1 {
		if value == nil {
			delete(root, key)
			return
		}
		root[key] = value
		return
	}

	next:= root[key]
	switch n:= next.(type) {
	case map[string]any:
		setAt(n, segs[1:], value)
		return
	case []any:
		if idx, err:= strconv.Atoi(segs[1]); err == nil {
			for idx >= len(n) {
				n = append(n, map[string]any{})
			}
			if len(segs) == 2 {
				n[idx] = value
			} else if m, ok:= n[idx].(map[string]any); ok {
				setAt(m, segs[2:], value)
			} else {
				m:= map[string]any{}
				setAt(m, segs[2:], value)
				n[idx] = m
			}
			root[key] = n
			return
		}
	}

	// fresh intermediate map, possibly seeded as a sequence when the next
	// segment is numeric (x.0.y -> x becomes [{y:...}])
	if idx, err:= strconv.Atoi(segs[1]); err == nil {
		seq:= make([]any, idx+1)
		for i:= range seq {
			seq[i] = map[string]any{}
		}
		if len(segs) == 2 {
			seq[idx] = value
		} else {
			m:= map[string]any{}
			setAt(m, segs[2:], value)
			seq[idx] = m
		}
		root[key] = seq
		return
	}

	m:= map[string]any{}
	setAt(m, segs[1:], value)
	root[key] = m
}
