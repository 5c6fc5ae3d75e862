package filter

import (
	"fmt"
	"image"
	"strings"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/effect"
)

// Mode は写真に適用するフィルターの種類です。
type Mode string

const (
	Normal       Mode = "normal"
	Grayscale    Mode = "grayscale"
	Sepia        Mode = "sepia"
	Pixar        Mode = "pixar"
	VinPixar     Mode = "vinpixar"
	GreenHarmony Mode = "greenharmony"
)

type step func(image.Image) image.Image

type definition struct {
	expression string
	steps      []step
}

// definitions は各モードの CSS 表現と、それに対応するラスタ処理です。
// steps は CSS filter と同じく左から順に適用されます。
var definitions = map[Mode]definition{
	Normal: {expression: "none"},
	Grayscale: {
		expression: "grayscale(100%)",
		steps:      []step{grayscale},
	},
	Sepia: {
		expression: "sepia(70%) brightness(1.1)",
		steps:      []step{sepia(0.7), brightness(1.1)},
	},
	Pixar: {
		expression: "saturate(1.3) contrast(1.15) brightness(1.1)",
		steps:      []step{saturate(1.3), contrast(1.15), brightness(1.1)},
	},
	VinPixar: {
		expression: "sepia(0.1) saturate(1.2) contrast(1.05) brightness(1.05)",
		steps:      []step{sepia(0.1), saturate(1.2), contrast(1.05), brightness(1.05)},
	},
	GreenHarmony: {
		expression: "saturate(1.2) contrast(1.05) brightness(1.05) hue-rotate(15deg)",
		steps:      []step{saturate(1.2), contrast(1.05), brightness(1.05), hueRotate(15)},
	},
}

// Modes は選択可能なモードを表示順で返します。
func Modes() []Mode {
	return []Mode{Normal, Grayscale, Sepia, Pixar, VinPixar, GreenHarmony}
}

// Parse は文字列からモードを解決します。空文字は Normal として扱います。
func Parse(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return Normal, nil
	}
	if !m.IsValid() {
		return "", fmt.Errorf("unknown filter mode %q", s)
	}
	return m, nil
}

// IsValid は定義済みのモードかどうかを返します。
func (m Mode) IsValid() bool {
	_, ok := definitions[m]
	return ok
}

func (m Mode) String() string {
	return string(m)
}

// Expression は CSS の filter プロパティ相当の表現を返します。Normal は "none" です。
func (m Mode) Expression() string {
	if d, ok := definitions[m]; ok {
		return d.expression
	}
	return "none"
}

// Apply は img にフィルターを適用した新しい画像を返します。Normal と未知のモードは img をそのまま返します。
// ビューファインダーやサムネイルのプレビューにも同じ処理を使えます。
func (m Mode) Apply(img image.Image) image.Image {
	d, ok := definitions[m]
	if !ok {
		return img
	}
	out := img
	for _, s := range d.steps {
		out = s(out)
	}
	return out
}

// UnmarshalText は CLI フラグや YAML からの読み込みに使われます。
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText は Mode を文字列として書き出します。
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m), nil
}

func grayscale(img image.Image) image.Image {
	return effect.Grayscale(img)
}

// sepia は CSS の sepia(amount) と同じく、元画像とセピア画像を amount の割合で混ぜます。
func sepia(amount float64) step {
	return func(img image.Image) image.Image {
		if amount >= 1 {
			return effect.Sepia(img)
		}
		return blend.Opacity(img, effect.Sepia(img), amount)
	}
}

// brightness / contrast / saturate は CSS の係数（1 が無変化）を bild の変化量（0 が無変化）に変換します。
func brightness(factor float64) step {
	return func(img image.Image) image.Image {
		return adjust.Brightness(img, factor-1)
	}
}

func contrast(factor float64) step {
	return func(img image.Image) image.Image {
		return adjust.Contrast(img, factor-1)
	}
}

func saturate(factor float64) step {
	return func(img image.Image) image.Image {
		return adjust.Saturation(img, factor-1)
	}
}

func hueRotate(degrees int) step {
	return func(img image.Image) image.Image {
		return adjust.Hue(img, degrees)
	}
}
