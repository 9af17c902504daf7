package stage

import (
	"strings"
	"unicode"
)

// Prim type tokens used by the samples.
const (
	TypeXform        = "Xform"
	TypeMesh         = "Mesh"
	TypeCube         = "Cube"
	TypeScope        = "Scope"
	TypeMaterial     = "Material"
	TypeShader       = "Shader"
	TypeDistantLight = "DistantLight"
	TypeDomeLight    = "DomeLight"
	TypePhysicsScene = "PhysicsScene"
	TypeGeomSubset   = "GeomSubset"
)

// Model kinds.
const (
	KindAssembly  = "assembly"
	KindComponent = "component"
)

// API schema tokens.
const (
	APIRigidBody       = "PhysicsRigidBodyAPI"
	APICollision       = "PhysicsCollisionAPI"
	APIMeshCollision   = "PhysicsMeshCollisionAPI"
	APIMaterialBinding = "MaterialBindingAPI"
)

// Prim is a node in the stage hierarchy. Children and attributes keep
// insertion order so encoding is stable.
type Prim struct {
	name   string
	typ    string
	kind   string
	parent *Prim

	apiSchemas []string
	references []AssetRef
	payloads   []AssetRef

	attrs     []Attr
	attrIndex map[string]int

	children   []*Prim
	childIndex map[string]*Prim
}

func newPrim(name, typ string, parent *Prim) *Prim {
	return &Prim{
		name:       name,
		typ:        typ,
		parent:     parent,
		attrIndex:  make(map[string]int),
		childIndex: make(map[string]*Prim),
	}
}

// Name returns the prim's own name.
func (p *Prim) Name() string { return p.name }

// Type returns the prim's type token, e.g. "Mesh".
func (p *Prim) Type() string { return p.typ }

// Kind returns the model kind ("assembly", "component" or empty).
func (p *Prim) Kind() string { return p.kind }

// SetKind sets the model kind.
func (p *Prim) SetKind(kind string) { p.kind = kind }

// Path returns the absolute prim path, e.g. "/World/box".
func (p *Prim) Path() string {
	if p.parent == nil {
		return "/"
	}
	parent := p.parent.Path()
	if parent == "/" {
		return "/" + p.name
	}
	return parent + "/" + p.name
}

// Parent returns the parent prim, or nil for the pseudo-root.
func (p *Prim) Parent() *Prim { return p.parent }

// Children returns the child prims in definition order.
func (p *Prim) Children() []*Prim { return p.children }

// Child returns the named child, or nil.
func (p *Prim) Child(name string) *Prim { return p.childIndex[name] }

// SetAttr sets or replaces an attribute value.
func (p *Prim) SetAttr(name string, value any) {
	if i, ok := p.attrIndex[name]; ok {
		p.attrs[i].Value = value
		return
	}
	p.attrIndex[name] = len(p.attrs)
	p.attrs = append(p.attrs, Attr{Name: name, Value: value})
}

// Attr returns an attribute value and whether it exists.
func (p *Prim) Attr(name string) (any, bool) {
	i, ok := p.attrIndex[name]
	if !ok {
		return nil, false
	}
	return p.attrs[i].Value, true
}

// HasAttr reports whether the attribute is set.
func (p *Prim) HasAttr(name string) bool {
	_, ok := p.attrIndex[name]
	return ok
}

// RemoveAttr deletes an attribute if present.
func (p *Prim) RemoveAttr(name string) {
	i, ok := p.attrIndex[name]
	if !ok {
		return
	}
	p.attrs = append(p.attrs[:i], p.attrs[i+1:]...)
	delete(p.attrIndex, name)
	for j := i; j < len(p.attrs); j++ {
		p.attrIndex[p.attrs[j].Name] = j
	}
}

// Attrs returns the attributes in definition order.
func (p *Prim) Attrs() []Attr { return p.attrs }

// ApplyAPI applies an API schema token. Applying twice is a no-op.
func (p *Prim) ApplyAPI(api string) {
	for _, a := range p.apiSchemas {
		if a == api {
			return
		}
	}
	p.apiSchemas = append(p.apiSchemas, api)
}

// HasAPI reports whether the API schema is applied.
func (p *Prim) HasAPI(api string) bool {
	for _, a := range p.apiSchemas {
		if a == api {
			return true
		}
	}
	return false
}

// APISchemas returns the applied API schema tokens.
func (p *Prim) APISchemas() []string { return p.apiSchemas }

// AddReference appends an external reference.
func (p *Prim) AddReference(ref AssetRef) { p.references = append(p.references, ref) }

// References returns the prim's references.
func (p *Prim) References() []AssetRef { return p.references }

// AddPayload appends an external payload reference.
func (p *Prim) AddPayload(ref AssetRef) { p.payloads = append(p.payloads, ref) }

// Payloads returns the prim's payloads.
func (p *Prim) Payloads() []AssetRef { return p.payloads }

// IsGeometric reports whether the prim is a gprim that should carry extents.
func (p *Prim) IsGeometric() bool {
	return p.typ == TypeMesh || p.typ == TypeCube
}

// MakeValidIdentifier converts an arbitrary name into a legal prim
// identifier: leading digits are prefixed and every other illegal rune
// becomes an underscore, so "box-0" turns into "box_0".
func MakeValidIdentifier(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	for i, r := range name {
		valid := r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r))
		if i == 0 && unicode.IsDigit(r) {
			b.WriteByte('_')
			b.WriteRune(r)
			continue
		}
		if valid {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
