package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"ecobook/internal/config"
	"ecobook/internal/tsv"
)

// openingnames writes every distinct opening name as a key of a JSON object
// with empty values, the seed of a translation table.
func main() {
	output := flag.String("output", "names.json", "file to write")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger()

	inputs := config.Default().Inputs
	if flag.NArg() > 0 {
		inputs = flag.Args()
	}

	files := make([]tsv.File, 0, len(inputs))
	for _, path := range inputs {
		log.Info().Str("file", path).Msg("importing file")
		f, err := tsv.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Msg("read input")
		}
		files = append(files, f)
	}
	names := tsv.Names(files...)

	out, err := os.Create(*output)
	if err != nil {
		log.Fatal().Err(err).Msg("create output")
	}
	w := bufio.NewWriter(out)
	if err := writeNames(w, names); err != nil {
		log.Fatal().Err(err).Msg("write names")
	}
	if err := w.Flush(); err != nil {
		log.Fatal().Err(err).Msg("write names")
	}
	if err := out.Close(); err != nil {
		log.Fatal().Err(err).Msg("close output")
	}
	log.Info().Int("names", len(names)).Str("output", *output).Msg("done")
}

// writeNames writes {"name": "", ...} keeping the order of names.
func writeNames(w io.Writer, names []string) error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, name := range names {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n    ")
		var key bytes.Buffer
		enc := json.NewEncoder(&key)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(name); err != nil {
			return err
		}
		buf.Write(bytes.TrimRight(key.Bytes(), "\n"))
		buf.WriteString(`: ""`)
	}
	if len(names) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}
