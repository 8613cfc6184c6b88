package tsv

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	in := "\ufeffeco\tname\tpgn\r\n" +
		"C20\tKing's Pawn Game\t1. e4 e5\r\n" +
		"\n" +
		"A00\tbroken row\n" +
		"B01\tScandinavian Defense\t1. e4 d5\n"

	f, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []Row{
		{LineNo: 2, ECO: "C20", Name: "King's Pawn Game", Movetext: "1. e4 e5"},
		{LineNo: 5, ECO: "B01", Name: "Scandinavian Defense", Movetext: "1. e4 d5"},
	}
	if !reflect.DeepEqual(f.Rows, want) {
		t.Fatalf("rows = %+v\nwant %+v", f.Rows, want)
	}
	if len(f.Bad) != 1 || f.Bad[0].LineNo != 4 {
		t.Fatalf("bad rows = %+v", f.Bad)
	}
	if !strings.Contains(f.Bad[0].Error(), "line 4") {
		t.Fatalf("bad row error = %q", f.Bad[0].Error())
	}
}

func TestReadHeaderOnly(t *testing.T) {
	f, err := Read(strings.NewReader("eco\tname\tpgn\n"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(f.Rows) != 0 || len(f.Bad) != 0 {
		t.Fatalf("unexpected content %+v", f)
	}
}

func TestReadNormalisesNames(t *testing.T) {
	// "Grünfeld" with a combining diaeresis
	in := "eco\tname\tpgn\nD80\tGru\u0308nfeld Defense\t1. d4 Nf6 2. c4 g6 3. Nc3 d5\n"
	f, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := f.Rows[0].Name; got != "Gr\u00fcnfeld Defense" {
		t.Fatalf("name = %q", got)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.tsv")
	content := "eco\tname\tpgn\nA00\tPolish Opening\t1. b4\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if f.Path != path || f.Size != int64(len(content)) || len(f.Rows) != 1 {
		t.Fatalf("unexpected file %+v", f)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.tsv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNames(t *testing.T) {
	a := File{Rows: []Row{{Name: "Sicilian"}, {Name: "French"}, {Name: "Sicilian"}}}
	b := File{Rows: []Row{{Name: "Caro-Kann"}, {Name: "French"}}}
	got := Names(a, b)
	want := []string{"Sicilian", "French", "Caro-Kann"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
}

func TestReadReplacesInvalidUTF8(t *testing.T) {
	in := "eco\tname\tpgn\nC20\tBad\xff name\t1. e4\n"
	f, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := f.Rows[0].Name; got != "Bad\ufffd name" {
		t.Fatalf("name = %q", got)
	}
}
