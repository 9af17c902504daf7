package stage

// Transform op attribute names. Ops are stored as ordinary attributes plus
// an ordering token array, mirroring the original samples' SRT layout.
const (
	AttrTranslate    = "xformOp:translate"
	AttrRotateXYZ    = "xformOp:rotateXYZ"
	AttrScale        = "xformOp:scale"
	AttrXformOpOrder = "xformOpOrder"
)

// SRT is a scale/rotate/translate transform in degrees and local units.
type SRT struct {
	Translate Vec3
	RotateXYZ Vec3
	Scale     Vec3
}

// DefaultSRT returns an identity transform.
func DefaultSRT() SRT {
	return SRT{Scale: Vec3{1, 1, 1}}
}

// SetSRT writes the full transform op stack onto the prim.
func (p *Prim) SetSRT(t SRT) {
	p.SetAttr(AttrTranslate, t.Translate)
	p.SetAttr(AttrRotateXYZ, t.RotateXYZ)
	p.SetAttr(AttrScale, t.Scale)
	p.SetAttr(AttrXformOpOrder, []Token{AttrTranslate, AttrRotateXYZ, AttrScale})
}

// GetSRT reads the transform op stack, returning identity components for
// ops the prim does not carry.
func (p *Prim) GetSRT() SRT {
	t := DefaultSRT()
	if v, ok := p.Attr(AttrTranslate); ok {
		if vec, ok := v.(Vec3); ok {
			t.Translate = vec
		}
	}
	if v, ok := p.Attr(AttrRotateXYZ); ok {
		if vec, ok := v.(Vec3); ok {
			t.RotateXYZ = vec
		}
	}
	if v, ok := p.Attr(AttrScale); ok {
		if vec, ok := v.(Vec3); ok {
			t.Scale = vec
		}
	}
	return t
}

// SetTranslate sets only the translate op, preserving the rest of the stack.
func (p *Prim) SetTranslate(v Vec3) {
	t := p.GetSRT()
	t.Translate = v
	p.SetSRT(t)
}
