package main

import (
	"flag"
	"fmt"
	"os"

	"ecobook/internal/book"
	"ecobook/internal/line"
)

func main() {
	fen := flag.String("fen", "", "position to look up (default: the initial position)")
	flag.Parse()

	path := "book.json"
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	b, err := book.ReadFile(path)
	if err != nil {
		fmt.Println("load error:", err)
		os.Exit(1)
	}

	key := line.InitialKey
	if *fen != "" {
		key, err = line.KeyFromFEN(*fen)
		if err != nil {
			fmt.Println("bad fen:", err)
			os.Exit(1)
		}
	}

	fmt.Println("positions:", b.Len())
	e, ok := b.Entry(key)
	if !ok {
		fmt.Println("not in book:", key)
		os.Exit(1)
	}
	fmt.Printf("%s  %s  %s\n", key, e.ECO, e.Name)
	for i, m := range e.Moves.Ranked() {
		fmt.Printf("%3d. %-6s %+d\n", i+1, m.UCI, m.Score)
	}
}
