// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Program jcur streams the tokens of a JSON document from a file or stdin.
//
// By default it prints one line per token with its span, kind, and raw text.
// With -extract, it instead writes the exact raw bytes of the value bound to
// the named top-level key and exits.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/chunkio/jcursor"
	"github.com/fatih/color"
	"github.com/spf13/pflag"
)

var (
	doComments = pflag.Bool("comments", false, "Allow JSON comments in the input")
	doColor    = pflag.Bool("color", false, "Colorize token kinds")
	extractKey = pflag.String("extract", "", "Write the value of this top-level key and exit")
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [input-file]\n\nOptions:\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	in := io.Reader(os.Stdin)
	if pflag.NArg() > 0 {
		f, err := os.Open(pflag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := jcursor.NewReader(in)
	defer c.Close()
	c.AllowComments(*doComments)

	var err error
	if *extractKey != "" {
		err = extract(ctx, c, *extractKey)
	} else {
		err = dump(ctx, c)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// dump prints one line per token of the input.
func dump(ctx context.Context, c *jcursor.Cursor) error {
	for c.Next(ctx) {
		tok := c.Token()
		kind := tok.Kind.String()
		if *doColor {
			kind = kindColor(tok.Kind).Sprint(kind)
		}
		fmt.Printf("%v\t%s\t%s\n", tok.Span, kind, tok.Text())
	}
	return c.Err()
}

// extract streams the input until the named top-level key is found, then
// writes the raw bytes of its value to stdout.
func extract(ctx context.Context, c *jcursor.Cursor, key string) error {
	if !c.Next(ctx) {
		if err := c.Err(); err != nil {
			return err
		}
		return errors.New("empty input")
	} else if c.Kind() != jcursor.ObjectStart {
		return fmt.Errorf("input begins with %v, not an object", c.Kind())
	}

	depth := 1
	for c.Next(ctx) {
		switch c.Kind() {
		case jcursor.Name:
			if depth != 1 {
				continue
			}
			name, err := c.Value().Text()
			if err != nil {
				return err
			}
			if name != key {
				continue
			}
			if !c.Next(ctx) {
				break
			}
			data, err := c.Capture(ctx)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(append(data, '\n'))
			return err

		case jcursor.ObjectStart, jcursor.ArrayStart:
			depth++
		case jcursor.ObjectEnd, jcursor.ArrayEnd:
			depth--
		}
	}
	if err := c.Err(); err != nil {
		return err
	}
	return fmt.Errorf("key %q not found", key)
}

func kindColor(kind jcursor.Kind) *color.Color {
	switch kind {
	case jcursor.ObjectStart, jcursor.ObjectEnd, jcursor.ArrayStart, jcursor.ArrayEnd:
		return color.New(color.FgYellow)
	case jcursor.Name:
		return color.New(color.FgCyan)
	case jcursor.String:
		return color.New(color.FgGreen)
	case jcursor.Number:
		return color.New(color.FgMagenta)
	case jcursor.Comment:
		return color.New(color.Faint)
	default:
		return color.New(color.FgBlue)
	}
}
