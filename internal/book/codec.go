package book

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Indent is the indentation of emitted books.
const Indent = "    "

type jsonEntry struct {
	ECO   string `json:"eco"`
	Name  string `json:"name"`
	Moves *Moves `json:"moves"`
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (m *Moves) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, uci := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshal(uci)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", m.scores[uci])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *Moves) UnmarshalJSON(data []byte) error {
	*m = Moves{scores: make(map[string]int)}
	dec := json.NewDecoder(bytes.NewReader(data))
	return decodeObject(dec, func(key string) error {
		var score int
		if err := dec.Decode(&score); err != nil {
			return fmt.Errorf("move %q: %w", key, err)
		}
		m.Add(key, score)
		return nil
	})
}

// MarshalJSON emits positions in first-seen order.
func (b *Book) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range b.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		e := b.entries[key]
		k, err := marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := marshal(jsonEntry{ECO: e.ECO, Name: e.Name, Moves: e.Moves})
		if err != nil {
			return nil, fmt.Errorf("position %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (b *Book) UnmarshalJSON(data []byte) error {
	*b = *New()
	dec := json.NewDecoder(bytes.NewReader(data))
	return decodeObject(dec, func(key string) error {
		je := jsonEntry{Moves: newMoves()}
		if err := dec.Decode(&je); err != nil {
			return fmt.Errorf("position %q: %w", key, err)
		}
		if _, dup := b.entries[key]; dup {
			return fmt.Errorf("duplicate position %q", key)
		}
		if je.Moves == nil {
			je.Moves = newMoves()
		}
		b.insert(key, &Entry{ECO: je.ECO, Name: je.Name, Moves: je.Moves})
		return nil
	})
}

// decodeObject walks a JSON object key by key, leaving each value for fn to
// decode from dec.
func decodeObject(dec *json.Decoder, fn func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected key, got %v", tok)
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// WriteTo writes the book as indented JSON.
func (b *Book) WriteTo(w io.Writer) (int64, error) {
	raw, err := b.MarshalJSON()
	if err != nil {
		return 0, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", Indent); err != nil {
		return 0, err
	}
	out.WriteByte('\n')
	return out.WriteTo(w)
}

// Decode reads a book written by WriteTo.
func Decode(r io.Reader) (*Book, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b := New()
	if err := b.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("decode book: %w", err)
	}
	return b, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteFile writes b to path, zstd-compressed when path ends in ".zst". It
// returns the number of bytes on disk.
func WriteFile(path string, b *Book) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create book: %w", err)
	}
	cw := &countingWriter{w: f}
	bw := bufio.NewWriter(cw)

	var w io.Writer = bw
	var enc *zstd.Encoder
	if strings.HasSuffix(path, ".zst") {
		enc, err = zstd.NewWriter(bw)
		if err != nil {
			_ = f.Close()
			return 0, fmt.Errorf("create zstd encoder: %w", err)
		}
		w = enc
	}

	if _, err := b.WriteTo(w); err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("write book: %w", err)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			_ = f.Close()
			return 0, fmt.Errorf("flush zstd: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("write book: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close book: %w", err)
	}
	return cw.n, nil
}

// ReadFile reads a book from path, decompressing ".zst" files.
func ReadFile(path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer dec.Close()
		r = dec
	}
	return Decode(r)
}
