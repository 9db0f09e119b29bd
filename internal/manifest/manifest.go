// Package manifest parses the main section of a JAR manifest.
package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// Attributes holds the main-section attributes of a manifest.
// Attribute names are case-insensitive; values are kept verbatim.
type Attributes map[string]string

// Get returns the value of the named attribute.
func (a Attributes) Get(name string) (string, bool) {
	v, ok := a[strings.ToLower(name)]
	return v, ok
}

// Parse reads the main section of a manifest. Parsing stops at the first
// blank line. Continuation lines (starting with a single space) are joined
// to the preceding line. Malformed lines are ignored. Lines of any length
// are accepted; the returned error reports a scan failure.
func Parse(data []byte) (Attributes, error) {
	attrs := make(Attributes)
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Split(scanLines)
	// A line can never be longer than the manifest itself.
	sc.Buffer(make([]byte, 0, min(len(data)+1, bufio.MaxScanTokenSize)), max(len(data)+1, bufio.MaxScanTokenSize))

	var name string
	var value strings.Builder
	flush := func() {
		if name != "" {
			attrs[strings.ToLower(name)] = value.String()
		}
		name = ""
		value.Reset()
	}

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			break
		}
		if line[0] == ' ' {
			if name != "" {
				value.WriteString(line[1:])
			}
			continue
		}
		flush()
		k, v, ok := strings.Cut(line, ":")
		if !ok || k == "" {
			continue
		}
		name = k
		value.WriteString(strings.TrimPrefix(v, " "))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan manifest: %w", err)
	}
	flush()
	return attrs, nil
}

// scanLines splits on "\r\n", "\n" or a lone "\r".
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\r' {
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if !atEOF {
				return 0, nil, nil
			}
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
