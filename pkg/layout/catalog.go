package layout

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/shouni/go-photobooth-kit/pkg/domain"

	"gopkg.in/yaml.v3"
)

//go:embed layouts.yaml
var defaultLayoutsYAML []byte

// Catalog は読み取り専用のレイアウトレジストリです。
// 生成後は変更されないため、どのゴルーチンから呼び出しても安全です。
type Catalog struct {
	layouts map[string]Layout
	order   []string
}

type catalogFile struct {
	Layouts []Layout `yaml:"layouts"`
}

// NewCatalog は与えられた定義を検証し、Catalog を生成します。
func NewCatalog(defs ...Layout) (*Catalog, error) {
	c := &Catalog{
		layouts: make(map[string]Layout, len(defs)),
		order:   make([]string, 0, len(defs)),
	}
	for _, def := range defs {
		if err := validate(def); err != nil {
			return nil, err
		}
		if _, dup := c.layouts[def.ID]; dup {
			return nil, fmt.Errorf("レイアウト %q が重複しています", def.ID)
		}
		c.layouts[def.ID] = def.clone()
		c.order = append(c.order, def.ID)
	}
	return c, nil
}

// DefaultCatalog は同梱の2レイアウト（3-vertikal, 4-vertikal）を持つ Catalog を返します。
func DefaultCatalog() *Catalog {
	c, err := Load(bytes.NewReader(defaultLayoutsYAML))
	if err != nil {
		// 同梱データの破損はビルド時点のバグです。
		panic(fmt.Sprintf("同梱レイアウトの読み込みに失敗しました: %v", err))
	}
	return c
}

// Load は YAML 形式のレイアウト表を読み込みます。
func Load(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("レイアウト表のデコードに失敗しました: %w", err)
	}
	return NewCatalog(f.Layouts...)
}

// LoadFile は指定パスの YAML ファイルからレイアウト表を読み込みます。
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("レイアウトファイルを開けませんでした: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Layout は id に対応する定義を返します。未登録なら domain.ErrUnknownLayout を返します。
func (c *Catalog) Layout(id string) (Layout, error) {
	l, ok := c.layouts[id]
	if !ok {
		return Layout{}, fmt.Errorf("%w: %q", domain.ErrUnknownLayout, id)
	}
	return l.clone(), nil
}

// Template は id のレイアウトの index 番目のテンプレートを返します。
func (c *Catalog) Template(id string, index int) (Template, error) {
	l, err := c.Layout(id)
	if err != nil {
		return Template{}, err
	}
	if index < 0 || index >= len(l.Templates) {
		return Template{}, fmt.Errorf("%w: layout %q has %d templates, got %d",
			domain.ErrTemplateIndexOutOfRange, id, len(l.Templates), index)
	}
	return l.Templates[index], nil
}

// IDs は登録順のレイアウト ID を返します。
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}

func validate(l Layout) error {
	if l.ID == "" {
		return fmt.Errorf("レイアウト ID が空です")
	}
	if l.MaxPhotos <= 0 {
		return fmt.Errorf("レイアウト %q: maxPhotos は正の整数である必要があります (got %d)", l.ID, l.MaxPhotos)
	}
	if !l.CanvasSize.IsValid() {
		return fmt.Errorf("レイアウト %q: canvasSize が不正です (%s)", l.ID, l.CanvasSize)
	}
	if len(l.Templates) == 0 {
		return fmt.Errorf("レイアウト %q: テンプレートが1つもありません", l.ID)
	}
	for i, t := range l.Templates {
		if len(t.Positions) != l.MaxPhotos {
			return fmt.Errorf("レイアウト %q テンプレート %d (%s): positions の数 %d が maxPhotos %d と一致しません",
				l.ID, i, t.Name, len(t.Positions), l.MaxPhotos)
		}
		if t.ImageSource == "" {
			return fmt.Errorf("レイアウト %q テンプレート %d (%s): imageSource が空です", l.ID, i, t.Name)
		}
		if !t.PhotoSize.IsValid() {
			return fmt.Errorf("レイアウト %q テンプレート %d (%s): photoSize が不正です (%s)", l.ID, i, t.Name, t.PhotoSize)
		}
	}
	return nil
}
