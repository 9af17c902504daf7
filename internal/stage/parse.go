package stage

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse decodes a stage from its text form.
func Parse(data []byte) (*Stage, error) {
	lines := strings.Split(string(data), "\n")
	p := &parser{lines: lines}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	s := New()
	if err := p.parseStageMetadata(s); err != nil {
		return nil, err
	}

	for {
		line, ok := p.peek()
		if !ok {
			break
		}
		if line == "" {
			p.next()
			continue
		}
		if err := p.parsePrim(s, s.root); err != nil {
			return nil, err
		}
	}
	return s, nil
}

type parser struct {
	lines []string
	pos   int
}

func (p *parser) peek() (string, bool) {
	if p.pos >= len(p.lines) {
		return "", false
	}
	return strings.TrimSpace(p.lines[p.pos]), true
}

func (p *parser) next() (string, bool) {
	line, ok := p.peek()
	if ok {
		p.pos++
	}
	return line, ok
}

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", p.pos+1, fmt.Sprintf(format, args...))
}

func (p *parser) parseHeader() error {
	line, ok := p.next()
	if !ok || line != headerMagic {
		return p.errf("missing %q header", headerMagic)
	}
	return nil
}

func (p *parser) parseStageMetadata(s *Stage) error {
	line, ok := p.peek()
	if !ok || line != "(" {
		return nil
	}
	p.next()
	for {
		line, ok := p.next()
		if !ok {
			return p.errf("unterminated stage metadata")
		}
		if line == ")" {
			return nil
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return p.errf("invalid stage metadata %q", line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "defaultPrim":
			name, err := strconv.Unquote(value)
			if err != nil {
				return p.errf("invalid defaultPrim %q", value)
			}
			s.defaultPrim = name
		case "metersPerUnit":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return p.errf("invalid metersPerUnit %q", value)
			}
			s.MetersPerUnit = f
		case "upAxis":
			axis, err := strconv.Unquote(value)
			if err != nil {
				return p.errf("invalid upAxis %q", value)
			}
			s.UpAxis = axis
		default:
			// Unknown stage metadata is ignored for forward compatibility.
		}
	}
}

// parsePrim consumes one "def ..." block and attaches it under parent.
func (p *parser) parsePrim(s *Stage, parent *Prim) error {
	line, ok := p.next()
	if !ok {
		return p.errf("expected prim definition")
	}
	if !strings.HasPrefix(line, "def ") {
		return p.errf("expected prim definition, got %q", line)
	}

	rest := strings.TrimSpace(strings.TrimPrefix(line, "def "))
	typ, rest, found := strings.Cut(rest, " ")
	if !found {
		return p.errf("invalid prim definition %q", line)
	}
	rest = strings.TrimSpace(rest)

	// Name is a quoted string, optionally followed by (metadata).
	if !strings.HasPrefix(rest, "\"") {
		return p.errf("invalid prim name in %q", line)
	}
	end := strings.Index(rest[1:], "\"")
	if end < 0 {
		return p.errf("unterminated prim name in %q", line)
	}
	name := rest[1 : end+1]
	meta := strings.TrimSpace(rest[end+2:])

	prim := newPrim(name, typ, parent)
	if existing := parent.childIndex[name]; existing != nil {
		return p.errf("duplicate prim %q under %s", name, parent.Path())
	}
	parent.childIndex[name] = prim
	parent.children = append(parent.children, prim)

	if meta != "" {
		if !strings.HasPrefix(meta, "(") || !strings.HasSuffix(meta, ")") {
			return p.errf("invalid prim metadata %q", meta)
		}
		if err := p.parsePrimMetadata(prim, meta[1:len(meta)-1]); err != nil {
			return err
		}
	}

	line, ok = p.next()
	if !ok || line != "{" {
		return p.errf("expected '{' after prim definition")
	}

	for {
		line, ok := p.peek()
		if !ok {
			return p.errf("unterminated prim body for %s", prim.Path())
		}
		switch {
		case line == "":
			p.next()
		case line == "}":
			p.next()
			return nil
		case strings.HasPrefix(line, "def "):
			if err := p.parsePrim(s, prim); err != nil {
				return err
			}
		default:
			if err := p.parseAttr(prim, line); err != nil {
				return err
			}
			p.next()
		}
	}
}

func (p *parser) parsePrimMetadata(prim *Prim, meta string) error {
	items, err := splitList("[" + meta + "]")
	if err != nil {
		return p.errf("invalid prim metadata: %v", err)
	}
	for _, item := range items {
		key, value, found := strings.Cut(item, "=")
		if !found {
			return p.errf("invalid prim metadata entry %q", item)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "kind":
			kind, err := strconv.Unquote(value)
			if err != nil {
				return p.errf("invalid kind %q", value)
			}
			prim.kind = kind
		case "apiSchemas":
			entries, err := splitList(value)
			if err != nil {
				return p.errf("invalid apiSchemas %q", value)
			}
			for _, e := range entries {
				api, err := strconv.Unquote(e)
				if err != nil {
					return p.errf("invalid apiSchemas entry %q", e)
				}
				prim.ApplyAPI(api)
			}
		case "references", "payloads":
			entries, err := splitList(value)
			if err != nil {
				return p.errf("invalid %s %q", key, value)
			}
			for _, e := range entries {
				if len(e) < 2 || e[0] != '@' || e[len(e)-1] != '@' {
					return p.errf("invalid asset reference %q", e)
				}
				ref := AssetRef(e[1 : len(e)-1])
				if key == "references" {
					prim.AddReference(ref)
				} else {
					prim.AddPayload(ref)
				}
			}
		default:
			return p.errf("unknown prim metadata key %q", key)
		}
	}
	return nil
}

func (p *parser) parseAttr(prim *Prim, line string) error {
	typeName, rest, found := strings.Cut(line, " ")
	if !found {
		return p.errf("invalid attribute %q", line)
	}
	name, rest, found := strings.Cut(strings.TrimSpace(rest), " ")
	if !found {
		return p.errf("invalid attribute %q", line)
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "=") {
		return p.errf("invalid attribute %q", line)
	}
	raw := strings.TrimSpace(strings.TrimPrefix(rest, "="))

	value, err := parseValue(typeName, raw)
	if err != nil {
		return p.errf("attribute %s: %v", name, err)
	}
	prim.SetAttr(name, value)
	return nil
}
