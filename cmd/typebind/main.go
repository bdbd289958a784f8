package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/reoring/typebind"
	"github.com/reoring/typebind/config"
	"github.com/reoring/typebind/engine"
	"github.com/reoring/typebind/model"
	"github.com/reoring/typebind/partial"
	"github.com/reoring/typebind/resolve"
)

var version = "dev"

var log = commonlog.GetLogger("typebind.cmd")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "resolve":
		resolveCmd(os.Args[2:])
	case "decode":
		decodeCmd(os.Args[2:])
	case "fields":
		fieldsCmd(os.Args[2:])
	case "-version", "--version", "version":
		fmt.Println("typebind", version)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "typebind CLI\n\nUsage:\n"+
		"  typebind resolve [-config f | -model f] [-o out.json]\n"+
		"  typebind decode -type Name [-fields s | -preset p] [-in payload.json]\n"+
		"  typebind fields -type Name [-compact | -fields s | -preset p]\n"+
		"  typebind -version\n\n"+
		"Without -config or -model, typebind.yml is searched from the working directory upwards.")
}

// common holds the flags every subcommand shares.
type common struct {
	configPath string
	modelPath  string
	verbose    bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config file (default: search for typebind.yml)")
	fs.StringVar(&c.modelPath, "model", "", "schema document, overrides the config file")
	fs.BoolVar(&c.verbose, "v", false, "enable verbose logs")
}

// session is a loaded and resolved schema.
type session struct {
	cfg   *config.Config
	res   *resolve.Result
	diags resolve.Diagnostics
}

func (c *common) load() *session {
	cfg := &config.Config{}
	path := c.configPath
	if path == "" && c.modelPath == "" {
		found, err := config.FindConfigFile(".", nil)
		if err != nil {
			fatalf("finding config: %v", err)
		}
		path = found
	}
	if path != "" {
		var err error
		cfg, err = config.LoadConfig(path)
		if err != nil {
			fatalf("%s: %v", path, err)
		}
	}
	c.configureLog(cfg)

	var (
		m   *model.Model
		err error
	)
	switch {
	case c.modelPath != "":
		m, err = model.LoadFile(c.modelPath)
	case cfg.Model != "":
		log.Infof("config %s, model %s", path, cfg.ModelPath())
		m, err = cfg.LoadModel()
	default:
		fatalf("no schema: pass -model or create typebind.yml")
	}
	if err != nil {
		fatalf("loading model: %v", err)
	}
	res, diags := resolve.Resolve(m)
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", d.Code, d.Message)
	}
	return &session{cfg: cfg, res: res, diags: diags}
}

func (c *common) configureLog(cfg *config.Config) {
	verbosity := cfg.Log.Verbosity
	if c.verbose && verbosity < 2 {
		verbosity = 2
	}
	var path *string
	if cfg.Log.File != "" {
		path = &cfg.Log.File
	}
	commonlog.Configure(verbosity, path)
}

func (s *session) entity(name string) model.Type {
	e, ok := s.res.Model().EntityByName(name)
	if !ok {
		fatalf("unknown entity %q", name)
	}
	return model.Dto{ID: e.ID}
}

// selection picks -fields, then -preset, then nil (everything).
func (s *session) selection(typ model.Type, entity, fields, preset string) *partial.Selection {
	switch {
	case fields != "":
		sel, err := partial.Parse(s.res, typ, fields)
		if err != nil {
			fatalf("%v", err)
		}
		return sel
	case preset != "":
		sel, err := s.cfg.Presets.Lookup(s.res, entity, preset)
		if err != nil {
			fatalf("%v", err)
		}
		return sel
	}
	return nil
}

func resolveCmd(args []string) {
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	var c common
	var out string
	c.register(fs)
	fs.StringVar(&out, "o", "", "output filename (default: config output or stdout)")
	_ = fs.Parse(args)

	s := c.load()
	b, err := resolve.BuildManifest(s.res, s.diags).JSON()
	if err != nil {
		fatalf("manifest: %v", err)
	}
	if out == "" {
		out = s.cfg.OutputPath()
	}
	if out == "" {
		_, _ = os.Stdout.Write(append(b, '\n'))
		return
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		fatalf("creating output dir: %v", err)
	}
	if err := os.WriteFile(out, append(b, '\n'), 0o644); err != nil {
		fatalf("writing output: %v", err)
	}
	log.Infof("wrote manifest: %s", out)
}

func decodeCmd(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	var c common
	var typeName, fields, preset, in string
	c.register(fs)
	fs.StringVar(&typeName, "type", "", "entity to decode")
	fs.StringVar(&fields, "fields", "", "partial selection, e.g. id,owner(id)")
	fs.StringVar(&preset, "preset", "", "named selection from the config file")
	fs.StringVar(&in, "in", "", "payload file (default: stdin)")
	_ = fs.Parse(args)
	if typeName == "" {
		fs.Usage()
		os.Exit(2)
	}

	s := c.load()
	typ := s.entity(typeName)
	sel := s.selection(typ, typeName, fields, preset)

	eng, err := engine.New(s.res)
	if err != nil {
		fatalf("engine: %v", err)
	}
	codec, err := eng.Codec(typ)
	if err != nil {
		fatalf("codec: %v", err)
	}

	v, err := decodeInput(codec, in, sel, s.cfg.ParseOpt())
	if err != nil {
		if iss, ok := typebind.AsIssues(err); ok {
			for _, it := range iss {
				fmt.Fprintf(os.Stderr, "%s: %s (%s)\n", it.Path, it.Message, it.Code)
				if it.Hint != "" {
					fmt.Fprintf(os.Stderr, "  %s\n", it.Hint)
				}
			}
			os.Exit(1)
		}
		fatalf("decode: %v", err)
	}
	tree, _, err := codec.Encode(v, sel)
	if err != nil {
		fatalf("encode: %v", err)
	}
	b, err := typebind.MarshalJSONIndent(tree)
	if err != nil {
		fatalf("encode: %v", err)
	}
	_, _ = os.Stdout.Write(append(b, '\n'))
}

// decodeInput decodes the payload file, or stdin when path is empty. The file
// is closed before the caller decides whether to exit.
func decodeInput(codec *engine.Codec, path string, sel *partial.Selection, opt typebind.ParseOpt) (any, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening payload: %w", err)
		}
		defer f.Close()
		r = f
	}
	return codec.DecodeFrom(context.Background(), typebind.JSONReader(r), sel, opt)
}

func fieldsCmd(args []string) {
	fs := flag.NewFlagSet("fields", flag.ExitOnError)
	var c common
	var typeName, fields, preset string
	var compact bool
	c.register(fs)
	fs.StringVar(&typeName, "type", "", "entity name")
	fs.StringVar(&fields, "fields", "", "selection to validate and normalize")
	fs.StringVar(&preset, "preset", "", "named selection from the config file")
	fs.BoolVar(&compact, "compact", false, "print the default selection (the default without -fields or -preset)")
	_ = fs.Parse(args)
	if typeName == "" {
		fs.Usage()
		os.Exit(2)
	}

	s := c.load()
	typ := s.entity(typeName)
	sel := s.selection(typ, typeName, fields, preset)
	if compact || sel == nil {
		sel = partial.Compact(s.res, typ)
	}
	fmt.Println(sel.String())
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
