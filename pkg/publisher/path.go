package publisher

import (
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultOutputFile は合成画像の既定の保存先です。
	DefaultOutputFile = "photobooth.jpg"
	// compositeContentType は合成画像の Content-Type です。
	compositeContentType = "image/jpeg"
)

// framePath は合成画像のパスに連番を挿入し、拡張子をフレームの実際の形式に合わせます。
// 判別できた形式の Content-Type も返します。
// 例: "out/photobooth.jpg", 1, PNGデータ -> "out/photobooth_1.png", "image/png"
func framePath(output string, index int, data []byte) (string, string, error) {
	p, err := urlpath.GenerateIndexedPath(output, index)
	if err != nil {
		return "", "", err
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return p, compositeContentType, nil
	}
	return strings.TrimSuffix(p, filepath.Ext(p)) + "." + kind.Extension, kind.MIME.Value, nil
}
