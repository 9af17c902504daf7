// Package stage implements the minimal scene-description surface the
// connect samples consume: a prim hierarchy with typed attributes, transform
// ops and a deterministic text encoding. It is intentionally a small subset;
// composition, variants and layering belong to the full scene library and
// are out of scope here.
package stage

import (
	"fmt"
	"strings"
)

// Up axis tokens.
const (
	UpAxisY = "Y"
	UpAxisZ = "Z"
)

// Stage is an in-memory scene document.
type Stage struct {
	UpAxis        string
	MetersPerUnit float64

	defaultPrim string
	root        *Prim
}

// New creates an empty stage with Y up axis and meter units.
func New() *Stage {
	return &Stage{
		UpAxis:        UpAxisY,
		MetersPerUnit: 1.0,
		root:          newPrim("", "", nil),
	}
}

// DefinePrim creates (or returns) the prim at the given absolute path,
// setting its type token. Missing ancestors are created as Xforms.
func (s *Stage) DefinePrim(path, typ string) (*Prim, error) {
	parts, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	cur := s.root
	for i, part := range parts {
		child := cur.childIndex[part]
		if child == nil {
			childType := TypeXform
			if i == len(parts)-1 {
				childType = typ
			}
			child = newPrim(part, childType, cur)
			cur.childIndex[part] = child
			cur.children = append(cur.children, child)
		} else if i == len(parts)-1 && child.typ != typ {
			return nil, fmt.Errorf("prim %s already defined as %s", path, child.typ)
		}
		cur = child
	}
	return cur, nil
}

// GetPrimAtPath returns the prim at the absolute path, or nil.
func (s *Stage) GetPrimAtPath(path string) *Prim {
	parts, err := splitPath(path)
	if err != nil {
		return nil
	}
	cur := s.root
	for _, part := range parts {
		cur = cur.childIndex[part]
		if cur == nil {
			return nil
		}
	}
	return cur
}

// RemovePrim removes the prim at the path and its subtree.
func (s *Stage) RemovePrim(path string) {
	prim := s.GetPrimAtPath(path)
	if prim == nil || prim.parent == nil {
		return
	}
	parent := prim.parent
	delete(parent.childIndex, prim.name)
	for i, c := range parent.children {
		if c == prim {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}
}

// SetDefaultPrim marks a root prim as the stage default.
func (s *Stage) SetDefaultPrim(prim *Prim) { s.defaultPrim = prim.name }

// DefaultPrim returns the stage's default prim, or nil if unset.
func (s *Stage) DefaultPrim() *Prim {
	if s.defaultPrim == "" {
		return nil
	}
	return s.root.childIndex[s.defaultPrim]
}

// Traverse visits every prim depth-first in definition order. Returning
// false from the visitor stops the walk.
func (s *Stage) Traverse(visit func(*Prim) bool) {
	var walk func(p *Prim) bool
	walk = func(p *Prim) bool {
		for _, c := range p.children {
			if !visit(c) {
				return false
			}
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(s.root)
}

// FindFirst returns the first prim matching the predicate, or nil.
func (s *Stage) FindFirst(match func(*Prim) bool) *Prim {
	var found *Prim
	s.Traverse(func(p *Prim) bool {
		if match(p) {
			found = p
			return false
		}
		return true
	})
	return found
}

func splitPath(path string) ([]string, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("prim path %q is not absolute", path)
	}
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil, fmt.Errorf("prim path %q is empty", path)
	}
	parts := strings.Split(trimmed, "/")
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("prim path %q has an empty element", path)
		}
	}
	return parts, nil
}
