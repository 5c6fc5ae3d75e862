package domain

import (
	"fmt"
	"image"
)

// Size はキャンバスやスロットの幅と高さ（ピクセル）です。
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Rect は Point を左上とする Size の矩形を返します。
func (s Size) Rect(at Point) image.Rectangle {
	return image.Rect(at.X, at.Y, at.X+s.Width, at.Y+s.Height)
}

// IsValid は幅と高さが共に正であるかを返します。
func (s Size) IsValid() bool {
	return s.Width > 0 && s.Height > 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Point はキャンバス上の座標です。負の値も許容します（スロットがキャンバス外へはみ出す場合）。
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Source は画像の入力元です。Data があればそれを優先し、なければ URI から解決します。
type Source struct {
	URI  string
	Data []byte
}

// String はログ出力用の短い表現を返します。バイト列そのものは出力しません。
func (s Source) String() string {
	if len(s.Data) > 0 {
		return fmt.Sprintf("inline(%d bytes)", len(s.Data))
	}
	return s.URI
}

// CapturedPhoto は撮影された1枚の写真です。生成後は変更されません。
type CapturedPhoto struct {
	SourceData   []byte
	CaptureIndex int
}

// Source は写真データを読み込み元として返します。
func (p CapturedPhoto) Source() Source {
	return Source{Data: p.SourceData}
}

// Reindex は撮影順を振り直した新しい写真のスライスを返します。元のスライスは変更しません。
func Reindex(photos []CapturedPhoto) []CapturedPhoto {
	out := make([]CapturedPhoto, len(photos))
	for i, p := range photos {
		out[i] = CapturedPhoto{SourceData: p.SourceData, CaptureIndex: i}
	}
	return out
}
