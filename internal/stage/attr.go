package stage

import (
	"fmt"
	"strconv"
	"strings"
)

// Vec2 is a two-component vector value.
type Vec2 [2]float64

// Vec3 is a three-component vector value.
type Vec3 [3]float64

// Vec4 is a four-component vector value.
type Vec4 [4]float64

// Token is a short symbolic value (up axis, interpolation mode, family name).
type Token string

// AssetRef is a reference to an external asset file, relative or absolute.
type AssetRef string

// Relationship is a target prim path, e.g. a material binding.
type Relationship string

// Attr is a single named, typed attribute on a prim. Attribute order is
// preserved so that serialization is deterministic.
type Attr struct {
	Name  string
	Value any
}

// TypeName returns the declared type keyword used in the text encoding.
func (a Attr) TypeName() (string, error) {
	switch a.Value.(type) {
	case bool:
		return "bool", nil
	case int:
		return "int", nil
	case []int:
		return "int[]", nil
	case float64:
		return "double", nil
	case []float64:
		return "double[]", nil
	case Vec2:
		return "float2", nil
	case []Vec2:
		return "float2[]", nil
	case Vec3:
		return "float3", nil
	case []Vec3:
		return "float3[]", nil
	case Vec4:
		return "float4", nil
	case Token:
		return "token", nil
	case []Token:
		return "token[]", nil
	case string:
		return "string", nil
	case AssetRef:
		return "asset", nil
	case Relationship:
		return "rel", nil
	}
	return "", fmt.Errorf("attribute %q has unsupported type %T", a.Name, a.Value)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatVec(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatFloat(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// formatValue renders an attribute value in the text encoding.
func formatValue(v any) (string, error) {
	switch val := v.(type) {
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case []int:
		parts := make([]string, len(val))
		for i, n := range val {
			parts[i] = strconv.Itoa(n)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case float64:
		return formatFloat(val), nil
	case []float64:
		parts := make([]string, len(val))
		for i, f := range val {
			parts[i] = formatFloat(f)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case Vec2:
		return formatVec(val[:]), nil
	case Vec3:
		return formatVec(val[:]), nil
	case Vec4:
		return formatVec(val[:]), nil
	case []Vec2:
		parts := make([]string, len(val))
		for i, vec := range val {
			parts[i] = formatVec(vec[:])
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case []Vec3:
		parts := make([]string, len(val))
		for i, vec := range val {
			parts[i] = formatVec(vec[:])
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case Token:
		return strconv.Quote(string(val)), nil
	case []Token:
		parts := make([]string, len(val))
		for i, t := range val {
			parts[i] = strconv.Quote(string(t))
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case string:
		return strconv.Quote(val), nil
	case AssetRef:
		return "@" + string(val) + "@", nil
	case Relationship:
		return "<" + string(val) + ">", nil
	}
	return "", fmt.Errorf("unsupported attribute value type %T", v)
}

// parseValue parses an encoded value according to its declared type keyword.
func parseValue(typeName, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch typeName {
	case "bool":
		return strconv.ParseBool(raw)
	case "int":
		return strconv.Atoi(raw)
	case "int[]":
		items, err := splitList(raw)
		if err != nil {
			return nil, err
		}
		out := make([]int, len(items))
		for i, item := range items {
			n, err := strconv.Atoi(item)
			if err != nil {
				return nil, fmt.Errorf("invalid int element %q: %w", item, err)
			}
			out[i] = n
		}
		return out, nil
	case "double", "float":
		return strconv.ParseFloat(raw, 64)
	case "double[]", "float[]":
		items, err := splitList(raw)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(items))
		for i, item := range items {
			f, err := strconv.ParseFloat(item, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid float element %q: %w", item, err)
			}
			out[i] = f
		}
		return out, nil
	case "float2":
		vals, err := parseVec(raw, 2)
		if err != nil {
			return nil, err
		}
		return Vec2{vals[0], vals[1]}, nil
	case "float3":
		vals, err := parseVec(raw, 3)
		if err != nil {
			return nil, err
		}
		return Vec3{vals[0], vals[1], vals[2]}, nil
	case "float4":
		vals, err := parseVec(raw, 4)
		if err != nil {
			return nil, err
		}
		return Vec4{vals[0], vals[1], vals[2], vals[3]}, nil
	case "float2[]":
		items, err := splitList(raw)
		if err != nil {
			return nil, err
		}
		out := make([]Vec2, len(items))
		for i, item := range items {
			vals, err := parseVec(item, 2)
			if err != nil {
				return nil, err
			}
			out[i] = Vec2{vals[0], vals[1]}
		}
		return out, nil
	case "float3[]":
		items, err := splitList(raw)
		if err != nil {
			return nil, err
		}
		out := make([]Vec3, len(items))
		for i, item := range items {
			vals, err := parseVec(item, 3)
			if err != nil {
				return nil, err
			}
			out[i] = Vec3{vals[0], vals[1], vals[2]}
		}
		return out, nil
	case "token":
		s, err := strconv.Unquote(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid token value %q: %w", raw, err)
		}
		return Token(s), nil
	case "token[]":
		items, err := splitList(raw)
		if err != nil {
			return nil, err
		}
		out := make([]Token, len(items))
		for i, item := range items {
			s, err := strconv.Unquote(item)
			if err != nil {
				return nil, fmt.Errorf("invalid token element %q: %w", item, err)
			}
			out[i] = Token(s)
		}
		return out, nil
	case "string":
		return strconv.Unquote(raw)
	case "asset":
		if len(raw) < 2 || raw[0] != '@' || raw[len(raw)-1] != '@' {
			return nil, fmt.Errorf("invalid asset value %q", raw)
		}
		return AssetRef(raw[1 : len(raw)-1]), nil
	case "rel":
		if len(raw) < 2 || raw[0] != '<' || raw[len(raw)-1] != '>' {
			return nil, fmt.Errorf("invalid relationship value %q", raw)
		}
		return Relationship(raw[1 : len(raw)-1]), nil
	}
	return nil, fmt.Errorf("unknown attribute type %q", typeName)
}

// splitList splits a bracketed list into its top-level elements, respecting
// nested parentheses and brackets so vector tuples and nested lists stay
// intact.
func splitList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) < 2 || raw[0] != '[' || raw[len(raw)-1] != ']' {
		return nil, fmt.Errorf("invalid list value %q", raw)
	}
	inner := strings.TrimSpace(raw[1 : len(raw)-1])
	if inner == "" {
		return nil, nil
	}

	var items []string
	depth := 0
	quoted := false
	start := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '"':
			quoted = !quoted
		case '(', '[':
			if !quoted {
				depth++
			}
		case ')', ']':
			if !quoted {
				depth--
			}
		case ',':
			if depth == 0 && !quoted {
				items = append(items, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	items = append(items, strings.TrimSpace(inner[start:]))
	return items, nil
}

func parseVec(raw string, n int) ([]float64, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) < 2 || raw[0] != '(' || raw[len(raw)-1] != ')' {
		return nil, fmt.Errorf("invalid vector value %q", raw)
	}
	parts := strings.Split(raw[1:len(raw)-1], ",")
	if len(parts) != n {
		return nil, fmt.Errorf("vector %q has %d components, want %d", raw, len(parts), n)
	}
	out := make([]float64, n)
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", part, err)
		}
		out[i] = f
	}
	return out, nil
}
