// Package tsv reads opening lists: a header line followed by rows of
// "eco<TAB>name<TAB>movetext".
package tsv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Row is one opening line.
type Row struct {
	// LineNo is the 1-based line number in the source file.
	LineNo   int
	ECO      string
	Name     string
	Movetext string
}

// BadRow is a line that could not be split into three fields.
type BadRow struct {
	LineNo int
	Text   string
}

func (b BadRow) Error() string {
	return fmt.Sprintf("line %d: expected 3 tab-separated fields: %q", b.LineNo, b.Text)
}

// File is the parsed content of one TSV file.
type File struct {
	Path string
	Size int64
	Rows []Row
	Bad  []BadRow
}

// ReadFile reads and splits a whole file.
func ReadFile(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return File{}, err
	}
	out, err := Read(f)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	out.Path = path
	out.Size = info.Size()
	return out, nil
}

// Read splits r. A leading UTF-8 byte order mark is dropped and the header
// line skipped. Blank lines are ignored.
func Read(r io.Reader) (File, error) {
	r = transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	var out File
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.SplitN(text, "\t", 3)
		if len(fields) < 3 {
			out.Bad = append(out.Bad, BadRow{LineNo: lineNo, Text: text})
			continue
		}
		out.Rows = append(out.Rows, Row{
			LineNo:   lineNo,
			ECO:      strings.TrimSpace(fields[0]),
			Name:     norm.NFC.String(strings.TrimSpace(fields[1])),
			Movetext: strings.TrimSpace(fields[2]),
		})
	}
	if err := sc.Err(); err != nil {
		return File{}, err
	}
	return out, nil
}

// Names returns the distinct opening names of files in first-seen order.
func Names(files ...File) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range files {
		for _, r := range f.Rows {
			if seen[r.Name] {
				continue
			}
			seen[r.Name] = true
			out = append(out, r.Name)
		}
	}
	return out
}
