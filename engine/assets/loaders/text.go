package loaders

import (
	"bufio"
	"bytes"
	"strings"
)

// maxSniffLines bounds how far the key=value sniffers read.
const maxSniffLines = 64

// hasKey reports whether data looks like a key=value text file declaring key
// within its first lines.
func hasKey(data []byte, key string) bool {
	if bytes.IndexByte(data, 0) >= 0 {
		return false
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for n := 0; n < maxSniffLines && scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, _, ok := strings.Cut(line, "=")
		if !ok {
			return false
		}
		if strings.TrimSpace(k) == key {
			return true
		}
	}
	return false
}

// isText reports whether data has no NUL byte in its first kilobyte.
func isText(data []byte) bool {
	if len(data) > 1024 {
		data = data[:1024]
	}
	return bytes.IndexByte(data, 0) < 0
}
