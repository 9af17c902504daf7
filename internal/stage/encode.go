package stage

import (
	"fmt"
	"strconv"
	"strings"
)

const headerMagic = "#stagelink 1.0"

const indentUnit = "    "

// Encode serializes the stage to its deterministic text form.
func Encode(s *Stage) ([]byte, error) {
	var b strings.Builder
	b.WriteString(headerMagic)
	b.WriteString("\n(\n")
	if s.defaultPrim != "" {
		fmt.Fprintf(&b, "%sdefaultPrim = %s\n", indentUnit, strconv.Quote(s.defaultPrim))
	}
	fmt.Fprintf(&b, "%smetersPerUnit = %s\n", indentUnit, formatFloat(s.MetersPerUnit))
	fmt.Fprintf(&b, "%supAxis = %s\n", indentUnit, strconv.Quote(s.UpAxis))
	b.WriteString(")\n")

	for _, child := range s.root.children {
		b.WriteString("\n")
		if err := encodePrim(&b, child, 0); err != nil {
			return nil, err
		}
	}
	return []byte(b.String()), nil
}

func encodePrim(b *strings.Builder, p *Prim, depth int) error {
	indent := strings.Repeat(indentUnit, depth)

	meta := primMetadata(p)
	if meta == "" {
		fmt.Fprintf(b, "%sdef %s %s\n", indent, p.typ, strconv.Quote(p.name))
	} else {
		fmt.Fprintf(b, "%sdef %s %s (%s)\n", indent, p.typ, strconv.Quote(p.name), meta)
	}
	fmt.Fprintf(b, "%s{\n", indent)

	attrIndent := indent + indentUnit
	for _, attr := range p.attrs {
		typeName, err := attr.TypeName()
		if err != nil {
			return fmt.Errorf("prim %s: %w", p.Path(), err)
		}
		val, err := formatValue(attr.Value)
		if err != nil {
			return fmt.Errorf("prim %s: %w", p.Path(), err)
		}
		fmt.Fprintf(b, "%s%s %s = %s\n", attrIndent, typeName, attr.Name, val)
	}

	for _, child := range p.children {
		if err := encodePrim(b, child, depth+1); err != nil {
			return err
		}
	}

	fmt.Fprintf(b, "%s}\n", indent)
	return nil
}

func primMetadata(p *Prim) string {
	var parts []string
	if p.kind != "" {
		parts = append(parts, fmt.Sprintf("kind = %s", strconv.Quote(p.kind)))
	}
	if len(p.apiSchemas) > 0 {
		quoted := make([]string, len(p.apiSchemas))
		for i, api := range p.apiSchemas {
			quoted[i] = strconv.Quote(api)
		}
		parts = append(parts, fmt.Sprintf("apiSchemas = [%s]", strings.Join(quoted, ", ")))
	}
	if len(p.references) > 0 {
		refs := make([]string, len(p.references))
		for i, ref := range p.references {
			refs[i] = "@" + string(ref) + "@"
		}
		parts = append(parts, fmt.Sprintf("references = [%s]", strings.Join(refs, ", ")))
	}
	if len(p.payloads) > 0 {
		refs := make([]string, len(p.payloads))
		for i, ref := range p.payloads {
			refs[i] = "@" + string(ref) + "@"
		}
		parts = append(parts, fmt.Sprintf("payloads = [%s]", strings.Join(refs, ", ")))
	}
	return strings.Join(parts, ", ")
}
