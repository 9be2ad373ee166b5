package param

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

type (
	Bool     = Value[bool]
	Int      = Value[int]
	Float    = Value[float32]
	String   = Value[string]
	FilePath = Value[string]
	Vector3  = Value[[3]float32]
	Color    = Value[[4]float32]

	enumValue = Value[int]
)

// NewBool creates a boolean parameter.
func NewBool(def bool) *Bool {
	return newValue(KindBool, def, codec[bool]{
		parse:  strconv.ParseBool,
		format: strconv.FormatBool,
		cty:    func(v cty.Value) (bool, error) { return fromCty[bool](v, cty.Bool) },
	})
}

// NewInt creates an unbounded integer parameter.
func NewInt(def int) *Int {
	return NewIntRange(def, math.MinInt, math.MaxInt)
}

// NewIntRange creates an integer parameter clamped to [lo, hi].
func NewIntRange(def, lo, hi int) *Int {
	return newValue(KindInt, def, codec[int]{
		parse:  func(s string) (int, error) { return strconv.Atoi(strings.TrimSpace(s)) },
		format: strconv.Itoa,
		cty:    func(v cty.Value) (int, error) { return fromCty[int](v, cty.Number) },
		clamp:  func(v int) int { return min(max(v, lo), hi) },
	})
}

// NewFloat creates an unbounded float parameter.
func NewFloat(def float32) *Float {
	return NewFloatRange(def, -math.MaxFloat32, math.MaxFloat32)
}

// NewFloatRange creates a float parameter clamped to [lo, hi].
func NewFloatRange(def, lo, hi float32) *Float {
	return newValue(KindFloat, def, codec[float32]{
		parse:  parseFloat32,
		format: formatFloat32,
		cty:    func(v cty.Value) (float32, error) { return fromCty[float32](v, cty.Number) },
		clamp:  func(v float32) float32 { return min(max(v, lo), hi) },
	})
}

// NewString creates a free-form string parameter.
func NewString(def string) *String {
	return newString(KindString, def)
}

// NewFilePath creates a string parameter holding a file system path.
func NewFilePath(def string) *FilePath {
	return newString(KindFilePath, def)
}

func newString(kind Kind, def string) *Value[string] {
	return newValue(kind, def, codec[string]{
		parse:  func(s string) (string, error) { return s, nil },
		format: func(s string) string { return s },
		cty:    func(v cty.Value) (string, error) { return fromCty[string](v, cty.String) },
	})
}

// NewVector3 creates a three-component float parameter, written "x;y;z".
func NewVector3(def [3]float32) *Vector3 {
	return newValue(KindVector3, def, codec[[3]float32]{
		parse: func(s string) ([3]float32, error) {
			var out [3]float32
			vals, err := parseFloatList(s, 3, 3)
			if err != nil {
				return out, err
			}
			copy(out[:], vals)
			return out, nil
		},
		format: func(v [3]float32) string { return formatFloatList(v[:]) },
		cty: func(v cty.Value) ([3]float32, error) {
			var out [3]float32
			vals, err := ctyFloatList(v, 3, 3)
			if err != nil {
				return out, err
			}
			copy(out[:], vals)
			return out, nil
		},
	})
}

// NewColor creates an RGBA parameter. It accepts "r;g;b[;a]", "#RRGGBB[AA]"
// and a handful of color names.
func NewColor(def [4]float32) *Color {
	return newValue(KindColor, def, codec[[4]float32]{
		parse:  parseColor,
		format: func(v [4]float32) string { return formatFloatList(v[:]) },
		cty: func(v cty.Value) ([4]float32, error) {
			if v.Type() == cty.String {
				return parseColor(v.AsString())
			}
			vals, err := ctyFloatList(v, 3, 4)
			if err != nil {
				return [4]float32{}, err
			}
			return rgba(vals), nil
		},
	})
}

// Enum is an integer parameter whose values carry display names.
type Enum struct {
	*enumValue
	names map[int]string
	order []int
}

// NewEnum creates an enum parameter. names maps each value to its label.
func NewEnum(def int, names map[int]string) *Enum {
	e := &Enum{names: names}
	for v := range names {
		e.order = append(e.order, v)
	}
	slices.Sort(e.order)
	e.enumValue = newValue(KindEnum, def, codec[int]{
		parse:  e.lookup,
		format: e.label,
		cty: func(v cty.Value) (int, error) {
			if v.Type() == cty.String {
				return e.lookup(v.AsString())
			}
			n, err := fromCty[int](v, cty.Number)
			if err != nil {
				return 0, err
			}
			if _, ok := e.names[n]; !ok {
				return 0, fmt.Errorf("unknown enum value %d", n)
			}
			return n, nil
		},
	})
	return e
}

// Names returns the labels in value order.
func (e *Enum) Names() []string {
	out := make([]string, 0, len(e.order))
	for _, v := range e.order {
		out = append(out, e.names[v])
	}
	return out
}

func (e *Enum) label(v int) string {
	if name, ok := e.names[v]; ok {
		return name
	}
	return strconv.Itoa(v)
}

func (e *Enum) lookup(s string) (int, error) {
	s = strings.TrimSpace(s)
	for v, name := range e.names {
		if strings.EqualFold(name, s) {
			return v, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		if _, ok := e.names[n]; ok {
			return n, nil
		}
	}
	return 0, fmt.Errorf("unknown enum value %q (valid: %s)", s, strings.Join(e.Names(), ", "))
}

// Button is a value-less parameter. Every press marks it dirty.
type Button struct {
	state
}

// NewButton creates a button parameter.
func NewButton() *Button { return &Button{} }

func (b *Button) Kind() Kind { return KindButton }

// Press marks the button dirty and runs its update callbacks.
func (b *Button) Press() { b.markChanged() }

func (b *Button) ValueString() string { return "" }

// SetString presses the button regardless of the argument.
func (b *Button) SetString(string) error {
	b.Press()
	return nil
}

// SetCty presses the button regardless of the argument.
func (b *Button) SetCty(cty.Value) error {
	b.Press()
	return nil
}

func fromCty[T any](v cty.Value, ty cty.Type) (T, error) {
	var out T
	cv, err := convert.Convert(v, ty)
	if err != nil {
		return out, err
	}
	if err := gocty.FromCtyValue(cv, &out); err != nil {
		return out, err
	}
	return out, nil
}

func ctyFloatList(v cty.Value, minLen, maxLen int) ([]float32, error) {
	if v.Type() == cty.String {
		return parseFloatList(v.AsString(), minLen, maxLen)
	}
	ty := v.Type()
	if !ty.IsTupleType() && !ty.IsListType() {
		return nil, fmt.Errorf("expected a list of numbers, got %s", ty.FriendlyName())
	}
	elems := v.AsValueSlice()
	if len(elems) < minLen || len(elems) > maxLen {
		return nil, fmt.Errorf("expected %d to %d components, got %d", minLen, maxLen, len(elems))
	}
	out := make([]float32, len(elems))
	for i, el := range elems {
		f, err := fromCty[float32](el, cty.Number)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

func parseFloat32(s string) (float32, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
	return float32(f), err
}

func formatFloat32(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func parseFloatList(s string, minLen, maxLen int) ([]float32, error) {
	parts := strings.Split(s, ";")
	if len(parts) < minLen || len(parts) > maxLen {
		return nil, fmt.Errorf("expected %d to %d ';'-separated components, got %d", minLen, maxLen, len(parts))
	}
	out := make([]float32, len(parts))
	for i, part := range parts {
		f, err := parseFloat32(part)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

func formatFloatList(vals []float32) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatFloat32(v)
	}
	return strings.Join(parts, ";")
}

var namedColors = map[string][4]float32{
	"black": {0, 0, 0, 1},
	"white": {1, 1, 1, 1},
	"red":   {1, 0, 0, 1},
	"green": {0, 1, 0, 1},
	"blue":  {0, 0, 1, 1},
	"gray":  {0.5, 0.5, 0.5, 1},
}

func parseColor(s string) ([4]float32, error) {
	s = strings.TrimSpace(s)
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c, nil
	}
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		if len(hex) != 6 && len(hex) != 8 {
			return [4]float32{}, fmt.Errorf("hex color must have 6 or 8 digits")
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return [4]float32{}, err
		}
		if len(hex) == 6 {
			n = n<<8 | 0xff
		}
		return [4]float32{
			float32(n>>24&0xff) / 255,
			float32(n>>16&0xff) / 255,
			float32(n>>8&0xff) / 255,
			float32(n&0xff) / 255,
		}, nil
	}
	vals, err := parseFloatList(s, 3, 4)
	if err != nil {
		return [4]float32{}, err
	}
	return rgba(vals), nil
}

func rgba(vals []float32) [4]float32 {
	out := [4]float32{0, 0, 0, 1}
	copy(out[:], vals)
	return out
}
