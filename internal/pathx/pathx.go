// Package pathx はパスをセグメント単位で扱う補助関数を提供します。
package pathx

import (
	"path/filepath"
	"strings"
)

// Segments は正規化したパスを区切り文字で分割します。ルート自体は空スライスです。
func Segments(p string) []string {
	cleaned := filepath.Clean(p)
	trimmed := strings.Trim(cleaned[len(filepath.VolumeName(cleaned)):], string(filepath.Separator))
	if trimmed == "" || trimmed == "." {
		return nil
	}
	return strings.Split(trimmed, string(filepath.Separator))
}

// WithinRoot は target が root 自身またはその配下にあるかを判定します。
// 文字列の前方一致ではなくセグメント列の前方一致で比較するため、
// /srv/files と /srv/files-evil のような兄弟ディレクトリを取り違えません。
// どちらかが絶対パスでない場合は false です。
func WithinRoot(root, target string) bool {
	if !filepath.IsAbs(root) || !filepath.IsAbs(target) {
		return false
	}
	if !strings.EqualFold(filepath.VolumeName(root), filepath.VolumeName(target)) {
		return false
	}

	rootSegs := Segments(root)
	targetSegs := Segments(target)
	if len(targetSegs) < len(rootSegs) {
		return false
	}
	for i, seg := range rootSegs {
		if targetSegs[i] != seg {
			return false
		}
	}
	return true
}
