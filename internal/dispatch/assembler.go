package dispatch

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pddkit/pddserve/internal/clog"
	"github.com/pddkit/pddserve/internal/config"
	"github.com/pddkit/pddserve/internal/pathutil"
)

// Flags that can carry the default document assignment.
const (
	envFlag     = "-e"
	envFileFlag = "--env-file"
)

// IsPathLike reports whether prompt names a file rather than holding prompt
// text: it contains a path separator or ends with ext. This is a heuristic;
// a one-line prompt ending in ".prompt" is treated as a path.
func IsPathLike(prompt, ext string) bool {
	if strings.ContainsRune(prompt, '/') || strings.ContainsRune(prompt, filepath.Separator) {
		return true
	}
	return ext != "" && strings.HasSuffix(prompt, ext)
}

// HasDocumentOverride reports whether args already assign docVar through
// -e or --env-file.
func HasDocumentOverride(args Args, docVar string) bool {
	for _, flag := range []string{envFlag, envFileFlag} {
		if v, ok := args.Get(flag); ok && v.Contains(docVar) {
			return true
		}
	}
	return false
}

// Invocation is an assembled pdd command line.
type Invocation struct {
	// Argv starts with the executable, then the command name.
	Argv []string
	// PromptFile is the positional prompt path, if any.
	PromptFile string
	temp       bool
}

// Transient reports whether PromptFile was created for this invocation.
func (inv *Invocation) Transient() bool { return inv.temp }

// Cleanup removes a transient prompt file. Errors are logged, never returned.
// It is safe to call more than once.
func (inv *Invocation) Cleanup() {
	if inv == nil || !inv.temp || inv.PromptFile == "" {
		return
	}
	if err := os.Remove(inv.PromptFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		clog.Warn("failed to remove temp prompt file %s: %v", inv.PromptFile, err)
		return
	}
	clog.Debug("removed temp prompt file %s", inv.PromptFile)
	inv.temp = false
}

// Assembler builds pdd command lines from requests.
type Assembler struct {
	root            string
	ext             string
	tempDir         string
	defaultDocument string
	documentVar     string
}

// NewAssembler creates an Assembler resolving paths against root.
func NewAssembler(root string, cfg config.PromptConfig) *Assembler {
	return &Assembler{
		root:            root,
		ext:             cfg.Extension,
		tempDir:         cfg.TempDir,
		defaultDocument: cfg.DefaultDocument,
		documentVar:     cfg.DocumentVar,
	}
}

// Assemble builds the command line for req, which must name a registered
// command. Token order is exe, command, prompt file, -b basename, args.
// On success the caller owns the returned Invocation and must call Cleanup.
// req.Args is not modified.
func (a *Assembler) Assemble(exe string, req Request) (*Invocation, error) {
	inv := &Invocation{Argv: []string{exe, req.Command}}
	args := req.Args.Clone()

	if req.Prompt != "" {
		if IsPathLike(req.Prompt, a.ext) {
			path, err := a.resolvePrompt(req.Prompt)
			if err != nil {
				return nil, err
			}
			clog.Debug("using existing prompt file %s", path)
			inv.PromptFile = path
		} else {
			path, err := a.writePrompt(req.Prompt)
			if err != nil {
				return nil, err
			}
			clog.Debug("created temp prompt file %s", path)
			inv.PromptFile = path
			inv.temp = true
			args = a.injectDefaultDocument(args)
		}
		inv.Argv = append(inv.Argv, inv.PromptFile)
	}

	if req.Basename != "" {
		inv.Argv = append(inv.Argv, "-b", req.Basename)
	}

	inv.Argv = append(inv.Argv, args.Expand()...)
	return inv, nil
}

func (a *Assembler) resolvePrompt(prompt string) (string, error) {
	path, err := pathutil.ResolveWithin(a.root, prompt)
	if err == nil {
		var info os.FileInfo
		info, err = os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, nil
		}
		if err == nil {
			err = errors.New("not a regular file")
		}
	}
	clog.Warn("prompt file not found: %s: %v", prompt, err)
	return "", newError(KindPromptFileNotFound, err,
		"Prompt file not found: %s. Please ensure the file exists in the server directory.", prompt)
}

func (a *Assembler) writePrompt(content string) (string, error) {
	dir := a.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "pdd-prompt-*"+a.ext)
	if err != nil {
		return "", newError(KindPromptFileWriteError, err, "Failed to handle prompt file: %v", err)
	}
	path := f.Name()
	_, werr := f.WriteString(content)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(path)
		return "", newError(KindPromptFileWriteError, err, "Failed to handle prompt file: %v", err)
	}
	return path, nil
}

// injectDefaultDocument adds -e <var>=<default document> when the default
// document exists and args do not already assign the variable.
func (a *Assembler) injectDefaultDocument(args Args) Args {
	if a.defaultDocument == "" || a.documentVar == "" {
		return args
	}
	if HasDocumentOverride(args, a.documentVar) {
		return args
	}

	doc := a.defaultDocument
	if !filepath.IsAbs(doc) {
		doc = filepath.Join(a.root, doc)
	}
	if _, err := os.Stat(doc); err != nil {
		clog.Debug("default document %s not available: %v", doc, err)
		return args
	}

	assignment := a.documentVar + "=" + a.defaultDocument
	v, ok := args.Get(envFlag)
	switch {
	case !ok:
		args.Set(envFlag, Scalar(assignment))
	case v.Kind() == KindSequence:
		args.Set(envFlag, Sequence(append(v.Items(), assignment)...))
	default:
		// A bare -e (null) keeps its lone flag token ahead of the assignment.
		args.Set(envFlag, Sequence(v.String(), assignment))
	}
	clog.Debug("using default document %s", a.defaultDocument)
	return args
}
