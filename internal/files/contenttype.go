package files

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultContentType は拡張子から判定できない場合の Content-Type です。
const DefaultContentType = "application/octet-stream"

var contentTypes = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".js":   "application/javascript",
	".css":  "text/css",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
}

// ContentTypeByExtension は固定の対応表から Content-Type を返します。
// 拡張子の大文字小文字は区別しません。
func ContentTypeByExtension(name string) (string, bool) {
	ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]
	return ct, ok
}

// DetectContentType は対応表で判定し、見つからなければ sniff が true の場合のみ中身から推定します。
func DetectContentType(name string, data []byte, sniff bool) string {
	if ct, ok := ContentTypeByExtension(name); ok {
		return ct
	}
	if sniff && len(data) > 0 {
		return mimetype.Detect(data).String()
	}
	return DefaultContentType
}
