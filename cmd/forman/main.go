package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v3"

	forman "github.com/formanlab/forman"
	js "github.com/formanlab/forman/jsonschema"
	"github.com/formanlab/forman/manifest"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "convert":
		convertCmd(os.Args[2:])
	case "reverse":
		reverseCmd(os.Args[2:])
	case "validate":
		validateCmd(os.Args[2:])
	case "repl":
		replCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `forman CLI

Usage:
  forman convert  -f fields.{json,yaml} [-o schema.json] [-domain name]
  forman reverse  -f schema.json [-o fields.json] [-yaml]
  forman validate -f fields.{json,yaml} -d data.json [-strict] [-states] [-remote table.json]
  forman repl     -f fields.{json,yaml} [-strict] [-remote table.json]

Remote option endpoints are not fetched; -remote supplies canned responses
keyed by endpoint URL.`)
}

func convertCmd(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	var in, out, domain string
	fs.StringVar(&in, "f", "", "field manifest (JSON or YAML)")
	fs.StringVar(&out, "o", "", "output file (default stdout)")
	fs.StringVar(&domain, "domain", "", "domain name for the document")
	_ = fs.Parse(args)
	if in == "" {
		fs.Usage()
		os.Exit(2)
	}
	fields, err := loadFields(in)
	if err != nil {
		fatalf("%v", err)
	}
	s, err := forman.ToJSONSchema(fields, forman.ConvertOpt{Domain: domain})
	if err != nil {
		fatalf("convert: %v", err)
	}
	s.SchemaURI = js.DraftURI
	writeJSON(out, s)
}

func reverseCmd(args []string) {
	fs := flag.NewFlagSet("reverse", flag.ExitOnError)
	var in, out string
	var asYAML bool
	fs.StringVar(&in, "f", "", "JSON Schema document")
	fs.StringVar(&out, "o", "", "output file (default stdout)")
	fs.BoolVar(&asYAML, "yaml", false, "emit the field list as YAML")
	_ = fs.Parse(args)
	if in == "" {
		fs.Usage()
		os.Exit(2)
	}
	raw, err := os.ReadFile(in)
	if err != nil {
		fatalf("%v", errors.Wrapf(err, "reading %s", in))
	}
	var s js.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		fatalf("parsing %s: %v", in, err)
	}
	fields, err := forman.FromJSONSchema(&s)
	if err != nil {
		fatalf("reverse: %v", err)
	}
	if asYAML {
		writeYAML(out, fields)
		return
	}
	writeJSON(out, fields)
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var in, data, domain, remote string
	var strict, states bool
	fs.StringVar(&in, "f", "", "field manifest (JSON or YAML)")
	fs.StringVar(&data, "d", "", "JSON document to check")
	fs.StringVar(&domain, "domain", "", "domain name for the document")
	fs.StringVar(&remote, "remote", "", "JSON table of canned remote option responses")
	fs.BoolVar(&strict, "strict", false, "reject unknown keys")
	fs.BoolVar(&states, "states", false, "print resolved field states")
	_ = fs.Parse(args)
	if in == "" || data == "" {
		fs.Usage()
		os.Exit(2)
	}
	fields, err := loadFields(in)
	if err != nil {
		fatalf("%v", err)
	}
	doc, err := loadValue(data)
	if err != nil {
		fatalf("%v", err)
	}
	opt := forman.ValidateOpt{Strict: strict, States: states, Domain: domain}
	if remote != "" {
		if opt.Resolver, err = loadRemoteTable(remote); err != nil {
			fatalf("%v", err)
		}
	}
	res, err := forman.Validate(context.Background(), doc, fields, opt)
	if err != nil {
		fatalf("validate: %v", err)
	}
	printIssues(res.Errors)
	if !res.Valid {
		os.Exit(1)
	}
	if states {
		writeJSON("", res.States)
		return
	}
	fmt.Println("valid")
}

// loadFields reads a field manifest, choosing the decoder by extension.
func loadFields(path string) ([]forman.Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return manifest.DecodeYAML(f)
	default:
		return manifest.DecodeJSON(f)
	}
}

func loadValue(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	return manifest.DecodeValue(f)
}

// loadRemoteTable builds a resolver from a JSON object keyed by endpoint
// URL. Responses are returned verbatim, so option lists stay lists.
func loadRemoteTable(path string) (forman.RemoteResolver, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	var table map[string]any
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return forman.RemoteResolverFunc(func(_ context.Context, endpoint string, _ map[string]any) (any, error) {
		if v, ok := table[endpoint]; ok {
			return v, nil
		}
		return nil, errors.Errorf("no canned response for %s", endpoint)
	}), nil
}

func printIssues(issues forman.Issues) {
	for _, iss := range issues {
		path := iss.Path
		if path == "" {
			path = "(root)"
		}
		if iss.Domain != "" {
			path = iss.Domain + ":" + path
		}
		fmt.Fprintf(os.Stderr, "%s: %s [%s]\n", path, iss.Message, iss.Code)
	}
}

func writeJSON(out string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatalf("encode: %v", err)
	}
	data = append(data, '\n')
	writeOut(out, data)
}

// writeYAML round-trips through JSON first so the emitted keys match the
// wire names instead of Go identifiers.
func writeYAML(out string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		fatalf("encode: %v", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		fatalf("encode: %v", err)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		fatalf("encode: %v", err)
	}
	writeOut(out, data)
}

func writeOut(out string, data []byte) {
	if out == "" || out == "-" {
		if _, err := os.Stdout.Write(data); err != nil {
			fatalf("write: %v", err)
		}
		return
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fatalf("writing %s: %v", out, err)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
