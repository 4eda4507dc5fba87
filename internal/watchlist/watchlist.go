// Package watchlist loads lists of accounts and projects to fetch in one run.
package watchlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads one identifier per line from path.
func Load(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only watchlist.
			_ = cerr
		}
	}()
	return Parse(file)
}

// Parse reads identifiers from r. Blank lines and lines starting with # are skipped,
// as is anything after whitespace on a line.
func Parse(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, strings.Fields(line)[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("watchlist is empty")
	}
	return ids, nil
}
