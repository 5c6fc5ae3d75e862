package layout

import (
	"github.com/shouni/go-photobooth-kit/pkg/domain"
)

// Template はレイアウト内のフレーム（オーバーレイ画像）の1バリエーションです。
// Positions の数は所属するレイアウトの MaxPhotos と一致します。
type Template struct {
	Name        string         `yaml:"name"`
	ImageSource string         `yaml:"imageSource"`
	Positions   []domain.Point `yaml:"positions"`
	PhotoSize   domain.Size    `yaml:"photoSize"`
}

// Layout は写真スロット数とキャンバスの形状を決める名前付きの定義です。
type Layout struct {
	ID         string      `yaml:"id"`
	MaxPhotos  int         `yaml:"maxPhotos"`
	CanvasSize domain.Size `yaml:"canvasSize"`
	Templates  []Template  `yaml:"templates"`
}

// Source はテンプレート画像を読み込み元として返します。
func (t Template) Source() domain.Source {
	return domain.Source{URI: t.ImageSource}
}

func (l Layout) clone() Layout {
	c := l
	c.Templates = make([]Template, len(l.Templates))
	for i, t := range l.Templates {
		tc := t
		tc.Positions = append([]domain.Point(nil), t.Positions...)
		c.Templates[i] = tc
	}
	return c
}
