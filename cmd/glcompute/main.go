// Package main provides the glcompute CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/glcompute/internal/logging"
	"github.com/born-ml/glcompute/internal/operators"
	"github.com/born-ml/glcompute/internal/opset"
	"github.com/born-ml/glcompute/onnx"
)

const version = "v0.0.1-dev"

var log = logging.For("cli")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "glcompute: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		usage(stdout)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "glcompute %s\n", version)
		return nil
	case "ops":
		return opsTable(stdout)
	case "info":
		return info(args[1:], stdout)
	case "compile":
		return compile(args[1:], stdout)
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	default:
		usage(stdout)
		return errors.Errorf("unknown command %q", args[0])
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "glcompute - compile ONNX graphs into GL compute harnesses")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version                 Show version")
	fmt.Fprintln(w, "  ops                     Print the operator support table (markdown)")
	fmt.Fprintln(w, "  info <model.onnx>       Show model metadata")
	fmt.Fprintln(w, "  compile [flags] <model.onnx>")
	fmt.Fprintln(w, "                          Emit <prefix>.h and <prefix>.c")
}

// opsTable prints which opset versions of each ONNX operator resolve to a
// kernel. "4-6, 8+" means versions 4 to 6, and 8 and above.
func opsTable(w io.Writer) error {
	rows := opset.SupportTable(operators.Schemas, operators.MaxSchemaVersion, operators.NewRegistry().Rules())

	fmt.Fprintln(w, "| Operator | WebGL Backend |")
	fmt.Fprintln(w, "|:--------:|:-------------:|")
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "| %s | %s |\n", row.OpType, strings.Join(row.Ranges, ", ")); err != nil {
			return err
		}
	}
	return nil
}

func info(args []string, w io.Writer) error {
	if len(args) != 1 {
		return errors.New("info: expected exactly one model path")
	}
	mi, err := onnx.GetModelInfo(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "IR version:  %d\n", mi.IRVersion)
	fmt.Fprintf(w, "Opset:       %d\n", mi.OpsetVersion)
	fmt.Fprintf(w, "Producer:    %s %s\n", mi.ProducerName, mi.ProducerVersion)
	fmt.Fprintf(w, "Inputs:      %s\n", strings.Join(mi.InputNames, ", "))
	fmt.Fprintf(w, "Outputs:     %s\n", strings.Join(mi.OutputNames, ", "))
	fmt.Fprintf(w, "Nodes:       %d\n", mi.NodeCount)
	fmt.Fprintf(w, "Weights:     %d\n", mi.WeightCount)
	fmt.Fprintf(w, "Operators:   %s\n", strings.Join(mi.Operators, ", "))
	return nil
}

func compile(args []string, w io.Writer) error {
	opts := onnx.DefaultCompileOptions()

	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.SetOutput(w)
	fs.StringVar(&opts.Prefix, "prefix", opts.Prefix, "prefix of every emitted C identifier")
	fs.IntVar(&opts.Version, "webgl", opts.Version, "WebGL capability version (1 or 2)")
	fs.IntVar(&opts.MaxTextureSize, "max-texture", 0, "cap texture edges below the device limit")
	noVerify := fs.Bool("no-verify", false, "skip compiling kernels on the device")
	fs.BoolVar(&opts.StandardEscapes, "std-escapes", false, `escape shader text with \n and \" instead of \uNNNN`)
	outDir := fs.String("o", ".", "output directory")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("compile: expected exactly one model path")
	}
	opts.VerifyShaders = !*noVerify
	logging.Verbose(*verbose)

	model, err := onnx.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	artifact, err := model.Compile(opts)
	if err != nil {
		return err
	}

	headerPath := filepath.Join(*outDir, artifact.HeaderName)
	sourcePath := filepath.Join(*outDir, opts.Prefix+".c")
	if err := os.WriteFile(headerPath, []byte(artifact.Header), 0o644); err != nil { //nolint:gosec // generated source is world readable
		return errors.Wrap(err, "write header")
	}
	if err := os.WriteFile(sourcePath, []byte(artifact.Source), 0o644); err != nil { //nolint:gosec // generated source is world readable
		return errors.Wrap(err, "write source")
	}

	log.WithField("nodes", model.NodeCount()).Debugf("wrote %s and %s", headerPath, sourcePath)
	fmt.Fprintf(w, "%s\n%s\n", headerPath, sourcePath)
	return nil
}
