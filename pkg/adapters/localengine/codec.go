package localengine

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/buildsync/pkg/domain"
)

var (
	urlSafe   = strings.NewReplacer("+", "-", "/", "_")
	urlUnsafe = strings.NewReplacer("-", "+", "_", "/")
)

// DecodeDecompress turns a shared build code into build XML.
// Codes use the URL-safe base64 alphabet over zlib-compressed XML.
func DecodeDecompress(code string) (string, error) {
	code = urlUnsafe.Replace(strings.TrimSpace(code))
	if code == "" {
		return "", fmt.Errorf("%w: empty code", domain.ErrDecode)
	}

	decoder := base64.NewDecoder(base64.StdEncoding, strings.NewReader(code))
	reader, err := zlib.NewReader(decoder)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create a zlib reader: %v", domain.ErrDecode, err)
	}
	defer reader.Close()

	text, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read from zlib reader: %v", domain.ErrDecode, err)
	}
	return string(text), nil
}

// CompressEncode is the inverse of DecodeDecompress.
func CompressEncode(text string) (string, error) {
	var buf bytes.Buffer
	encoder := base64.NewEncoder(base64.StdEncoding, &buf)

	writer := zlib.NewWriter(encoder)
	if _, err := writer.Write([]byte(text)); err != nil {
		return "", fmt.Errorf("failed to compress build: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to flush zlib writer: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to flush base64 encoder: %w", err)
	}

	return urlSafe.Replace(buf.String()), nil
}
