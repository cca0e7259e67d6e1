// Package textcodec 负责把文件字节解码为文本并切分成物理行。
// 解码按配置顺序尝试：UTF-8 优先，失败后回退到单字节遗留编码。
package textcodec

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// DefaultEncodings 是默认的解码顺序。
var DefaultEncodings = []string{"utf-8", "iso-8859-1"}

// ErrUndecodable 表示所有候选编码都无法解码该内容。
var ErrUndecodable = errors.New("content is not decodable with any configured encoding")

const byteOrderMark = "\uFEFF"

// Decoder 持有已解析的候选编码列表。
type Decoder struct {
	names     []string
	encodings []encoding.Encoding
}

// NewDecoder 按名称解析编码。"utf-8" 使用严格校验，其余通过 IANA 名称表查找。
func NewDecoder(names []string) (*Decoder, error) {
	if len(names) == 0 {
		names = DefaultEncodings
	}

	decoder := &Decoder{}
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if isUTF8(trimmed) {
			decoder.names = append(decoder.names, "utf-8")
			decoder.encodings = append(decoder.encodings, nil)
			continue
		}

		enc, err := ianaindex.IANA.Encoding(trimmed)
		if err != nil {
			return nil, fmt.Errorf("unknown encoding %q: %w", trimmed, err)
		}
		if enc == nil {
			return nil, fmt.Errorf("unsupported encoding %q", trimmed)
		}
		decoder.names = append(decoder.names, strings.ToLower(trimmed))
		decoder.encodings = append(decoder.encodings, enc)
	}
	return decoder, nil
}

// Names 返回解析后的编码名称。
func (d *Decoder) Names() []string {
	return append([]string(nil), d.names...)
}

// Decode 返回解码后的文本以及实际使用的编码名称。
// UTF-8 BOM 会被去掉，写回时统一为无 BOM 的 UTF-8。
func (d *Decoder) Decode(data []byte) (string, string, error) {
	var lastErr error
	for idx, enc := range d.encodings {
		if enc == nil {
			if utf8.Valid(data) {
				return strings.TrimPrefix(string(data), byteOrderMark), d.names[idx], nil
			}
			lastErr = errors.New("invalid utf-8 sequence")
			continue
		}

		decoded, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			lastErr = err
			continue
		}
		return string(decoded), d.names[idx], nil
	}

	if lastErr != nil {
		return "", "", fmt.Errorf("%w: %v", ErrUndecodable, lastErr)
	}
	return "", "", ErrUndecodable
}

// SplitLines 把文本切分为物理行，去掉换行符。
// 文本以换行结尾时不会产生额外的空行；兼容 \r\n。
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for idx, line := range lines {
		lines[idx] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func isUTF8(name string) bool {
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		return true
	}
	return false
}
