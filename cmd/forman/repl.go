package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/peterh/liner"

	forman "github.com/formanlab/forman"
	js "github.com/formanlab/forman/jsonschema"
)

const (
	historyFile = ".forman_history"
	promptMain  = "> "
	promptCont  = "| "
)

func replCmd(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	var in, domain, remote string
	var strict bool
	fs.StringVar(&in, "f", "", "field manifest (JSON or YAML)")
	fs.StringVar(&domain, "domain", "", "domain name for the document")
	fs.StringVar(&remote, "remote", "", "JSON table of canned remote option responses")
	fs.BoolVar(&strict, "strict", false, "reject unknown keys")
	_ = fs.Parse(args)
	if in == "" {
		fs.Usage()
		os.Exit(2)
	}
	fields, err := loadFields(in)
	if err != nil {
		fatalf("%v", err)
	}
	opt := forman.ValidateOpt{Strict: strict, States: true, Domain: domain}
	if remote != "" {
		if opt.Resolver, err = loadRemoteTable(remote); err != nil {
			fatalf("%v", err)
		}
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Printf("loaded %d fields from %s; enter JSON documents, :help for commands\n", len(fields), in)
	for {
		src, ok := readDocument(ln)
		if !ok {
			fmt.Println()
			return
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			ln.AppendHistory(trimmed)
			if quit := replCommand(trimmed, fields, &opt); quit {
				return
			}
			continue
		}
		dec := json.NewDecoder(strings.NewReader(src))
		dec.UseNumber()
		var doc any
		if err := dec.Decode(&doc); err != nil {
			fmt.Fprintf(os.Stderr, "parse error: %v\n", err)
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		res, err := forman.Validate(context.Background(), doc, fields, opt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "validate: %v\n", err)
			continue
		}
		printResult(res, opt.Domain)
	}
}

// readDocument keeps prompting until the buffer holds one complete JSON
// value, so documents can span lines. Ctrl-C drops the buffer and starts
// over; EOF ends the session.
func readDocument(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(promptMain)
		} else {
			line, err = ln.Prompt(promptCont)
		}
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println("(aborted)")
				b.Reset()
				continue
			}
			if errors.Is(err, io.EOF) {
				return "", false
			}
			fmt.Fprintf(os.Stderr, "read error: %v\n", err)
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		src := b.String()
		trimmed := strings.TrimSpace(src)
		if trimmed == "" || strings.HasPrefix(trimmed, ":") {
			return src, true
		}
		if jsonComplete(src) {
			return src, true
		}
	}
}

// jsonComplete reports whether src parses as one full JSON value. Premature
// end of input means the document continues on the next line; any other
// syntax error returns true so the caller reports it.
func jsonComplete(src string) bool {
	dec := json.NewDecoder(strings.NewReader(src))
	var v any
	err := dec.Decode(&v)
	if err == nil {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return false
	}
	if strings.Contains(err.Error(), "unexpected end of JSON input") {
		return false
	}
	return true
}

func replCommand(cmd string, fields []forman.Field, opt *forman.ValidateOpt) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q":
		return true
	case ":fields":
		for _, f := range fields {
			flags := ""
			if f.Required {
				flags = " required"
			}
			fmt.Printf("  %-20s %s%s\n", f.Name, f.Type, flags)
		}
	case ":schema":
		s, err := forman.ToJSONSchema(fields, forman.ConvertOpt{Domain: opt.Domain})
		if err != nil {
			fmt.Fprintf(os.Stderr, "convert: %v\n", err)
			return false
		}
		s.SchemaURI = js.DraftURI
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			return false
		}
		fmt.Println(string(data))
	case ":strict":
		opt.Strict = !opt.Strict
		fmt.Printf("strict = %v\n", opt.Strict)
	case ":help":
		fmt.Println("  :fields  list the loaded fields\n  :schema  print the converted JSON Schema\n  :strict  toggle unknown-key rejection\n  :quit    exit")
	default:
		fmt.Println("unknown command, :help lists commands")
	}
	return false
}

func printResult(res *forman.Result, domain string) {
	if !res.Valid {
		printIssues(res.Errors)
		return
	}
	fmt.Println("ok")
	if tree := res.States[domain]; len(tree) > 0 {
		if data, err := json.Marshal(tree); err == nil {
			fmt.Printf("states: %s\n", data)
		}
	}
}
