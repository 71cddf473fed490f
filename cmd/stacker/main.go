// Command stacker is the CLI entry point: it wires fitsio, calibrate,
// frame, align, stackio, ppm, memcheck, progress, preview and restapi
// together into the `stack`, `pixel-median`, `serve`, `legal` and
// `version` subcommands. Grounded on nightlight's cmd/nightlight/main.go
// flag block and switch-on-subcommand dispatch, narrowed from its dozen
// operator-chain subcommands down to the ones this rewrite's pipeline
// actually has.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mlnoga/stacker/internal/align"
	"github.com/mlnoga/stacker/internal/calibrate"
	"github.com/mlnoga/stacker/internal/errs"
	"github.com/mlnoga/stacker/internal/fitsio"
	"github.com/mlnoga/stacker/internal/frame"
	"github.com/mlnoga/stacker/internal/image"
	"github.com/mlnoga/stacker/internal/memcheck"
	"github.com/mlnoga/stacker/internal/nllog"
	"github.com/mlnoga/stacker/internal/ppm"
	"github.com/mlnoga/stacker/internal/preview"
	"github.com/mlnoga/stacker/internal/progress"
	"github.com/mlnoga/stacker/internal/restapi"
	"github.com/mlnoga/stacker/internal/stackio"
)

var (
	fOutput       = flag.String("output", "out.ppm", "output file name (PPM/PGM)")
	fDark         = flag.String("dark", "", "optional dark frame to subtract from every light frame")
	fBias         = flag.String("bias", "", "optional bias frame to subtract from every light frame")
	fCFA          = flag.String("cfa", "", "debayer the inputs using this Bayer pattern: RGGB, GRBG, GBRG or BGGR; empty disables debayering")
	fEpsilon      = flag.Float64("epsilon", align.DefaultDedupRadius, "minimum pixel distance between distinct catalog stars during alignment")
	fConsK        = flag.Int("k", 5, "number of nearest neighbors per star when building alignment constellations")
	fPreviewStars = flag.String("preview-stars", "", "write a debug PPM overlaying detected stars and constellations for the first accepted frame to this path")
	fLogFile      = flag.String("log", "", "also write log output to this file")
	fMemFraction  = flag.Float64("mem-fraction", memcheck.DefaultFraction, "warn if projected memory footprint exceeds this fraction of physical RAM")

	fPort   = flag.Int("port", 8080, "port for the serve subcommand's HTTP API")
	fChroot = flag.String("chroot", "", "chroot to this directory before serving (serve subcommand, Unix only)")
	fSetuid = flag.Int("setuid", -1, "drop privileges to this uid before serving (serve subcommand, Unix only)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <command> [flags] [input files...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  stack FILE...         align and stack light frames into --output\n")
		fmt.Fprintf(os.Stderr, "  pixel-median FILE...  element-wise median of FILE... into --output\n")
		fmt.Fprintf(os.Stderr, "  serve                 run the HTTP job API on --port\n")
		fmt.Fprintf(os.Stderr, "  legal                 print third-party license attributions\n")
		fmt.Fprintf(os.Stderr, "  version               print the version string\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	os.Exit(run())
}

// run dispatches the parsed subcommand and returns the process exit code.
// It recovers a panic from a failed allocation (Go reports out-of-memory
// as a runtime panic, not an error return) and reports it as
// errs.OutOfMemory instead of letting the process crash with a stack
// trace, so run must be the only place os.Exit is decided — a deferred
// recover cannot run after an os.Exit call elsewhere in the chain.
func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", errs.New(errs.OutOfMemory, "", fmt.Errorf("%v", r)))
			code = errs.OutOfMemory.ExitCode()
		}
	}()

	flag.Parse()

	// Flags may also follow the subcommand (`stack --output out.ppm a.fits`),
	// so whatever comes after it is parsed a second time.
	args := flag.Args()
	if len(args) > 0 {
		cmd := args[0]
		flag.CommandLine.Parse(args[1:])
		args = append([]string{cmd}, flag.Args()...)
	}

	log := nllog.New(os.Stderr)
	if *fLogFile != "" {
		if err := log.AlsoToFile(*fLogFile); err != nil {
			fmt.Fprintf(os.Stderr, "error: opening log file: %s\n", err)
			return errs.IOFailure.ExitCode()
		}
	}
	defer log.Sync()

	if len(args) == 0 {
		flag.Usage()
		return errs.UsageError.ExitCode()
	}

	var err error
	switch args[0] {
	case "stack":
		err = runStack(log, args[1:], false)
	case "pixel-median":
		err = runStack(log, args[1:], true)
	case "serve":
		err = runServe(log)
	case "legal":
		fmt.Println(legal)
		return 0
	case "version":
		fmt.Println(version)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", args[0])
		flag.Usage()
		return errs.UsageError.ExitCode()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		if e, ok := err.(*errs.Error); ok {
			return e.Kind.ExitCode()
		}
		return 1
	}
	return 0
}

func parseCFA(s string) (fitsio.CFAType, bool) {
	switch s {
	case "RGGB":
		return fitsio.CFARGGB, true
	case "GRBG":
		return fitsio.CFAGRBG, true
	case "GBRG":
		return fitsio.CFAGBRG, true
	case "BGGR":
		return fitsio.CFABGGR, true
	default:
		return 0, false
	}
}

// loadInputs decodes every named FITS file, optionally debayering and
// dark/bias-subtracting each one, and returns them in input order.
func loadInputs(log *nllog.Logger, paths []string) ([]*image.Image, error) {
	var cfa fitsio.CFAType
	debayer := false
	if *fCFA != "" {
		c, ok := parseCFA(*fCFA)
		if !ok {
			return nil, errs.New(errs.UsageError, *fCFA, nil)
		}
		cfa, debayer = c, true
	}

	var dark, bias calibrate.Frame
	if *fDark != "" {
		im, _, err := fitsio.Open(*fDark)
		if err != nil {
			return nil, err
		}
		dark = calibrate.Load(im)
	}
	if *fBias != "" {
		im, _, err := fitsio.Open(*fBias)
		if err != nil {
			return nil, err
		}
		bias = calibrate.Load(im)
	}

	log.SetStage("load")
	out := make([]*image.Image, 0, len(paths))
	for i, p := range paths {
		im, _, err := fitsio.Open(p)
		if err != nil {
			return nil, err
		}
		if err := calibrate.SubtractAll(im, dark, bias); err != nil {
			return nil, err
		}
		if debayer {
			im = fitsio.Debayer(im, cfa)
		}
		out = append(out, im)
		log.Printf("loaded %s (%d/%d)\n", p, i+1, len(paths))
	}
	return out, nil
}

// runStack implements both the `stack` and `pixel-median` subcommands;
// medianMode selects element-wise median over accumulate-with-offset.
func runStack(log *nllog.Logger, paths []string, medianMode bool) error {
	if len(paths) == 0 {
		return errs.New(errs.UsageError, "", nil)
	}

	images, err := loadInputs(log, paths)
	if err != nil {
		return err
	}

	footprint := memcheck.Footprint(len(images), images[0].Width, images[0].Height, images[0].Components)
	budget := memcheck.Budget{Fraction: *fMemFraction}
	if warning := memcheck.Check(budget, footprint); warning != "" {
		log.Println("warning:", warning)
	}

	var result *image.Image
	if medianMode {
		log.SetStage("median")
		result, err = stackio.Median(images)
		if err != nil {
			return err
		}
	} else {
		log.SetStage("extract")
		extractor := frame.NewExtractor(frame.DefaultOptions())
		stack := &frame.Stack{}
		prog := progress.New(int64(len(images)))
		for i, im := range images {
			extractor.ExtractFrame(stack, i, im)
			log.Printf("extracted frame %d/%d\n", prog.Add(1), len(images))
		}
		if len(stack.Frames) == 0 {
			return errs.New(errs.InsufficientStars, "", nil)
		}

		log.SetStage("align")
		alignOpts := align.Options{ConstellationK: *fConsK, DedupRadius: float32(*fEpsilon)}
		offsets, err := align.Run(stack, alignOpts)
		if err != nil {
			return err
		}

		if *fPreviewStars != "" {
			if err := writePreview(stack, images); err != nil {
				log.Println("warning: failed to write preview:", err)
			}
		}

		aligned := make([]*image.Image, len(stack.Frames))
		for i, rec := range stack.Frames {
			aligned[i] = images[rec.ImageIndex]
		}

		log.SetStage("stack")
		result, err = stackio.Accumulate(aligned, offsets)
		if err != nil {
			return err
		}
	}

	image.Normalize(result)
	log.SetStage("write")
	return ppm.WriteFile(*fOutput, result, 0, 1)
}

// writePreview renders the first accepted frame's detected stars and
// constellations. It recomputes the grayscale+blurred buffer from
// scratch rather than reusing the extractor's internal ones, since those
// only hold the most recently processed frame by the time extraction
// finishes.
func writePreview(stack *frame.Stack, images []*image.Image) error {
	if len(stack.Frames) == 0 {
		return nil
	}
	rec := stack.Frames[0]
	blurred := image.New(0, 0, 0)
	scratch := image.New(0, 0, 0)
	grayscale := image.New(0, 0, 0)
	src := images[rec.ImageIndex]
	image.Grayscale(grayscale, src)
	image.Gaussian(blurred, scratch, grayscale, frame.DefaultOptions().GaussianSigma)

	overlay := preview.Render(blurred, stack.FrameStars(0), stack.FrameConstellations(0))
	return ppm.WriteFile(*fPreviewStars, overlay, 0, 1)
}

func runServe(log *nllog.Logger) error {
	restapi.MakeSandbox(*fChroot, *fSetuid)

	server := restapi.NewServer(func(p *progress.Progress, inputs []string, output string) (string, error) {
		images, err := loadInputs(log, inputs)
		if err != nil {
			return "", err
		}
		p.SetStage("extract", int64(len(images)))

		extractor := frame.NewExtractor(frame.DefaultOptions())
		stack := &frame.Stack{}
		for i, im := range images {
			extractor.ExtractFrame(stack, i, im)
			p.Add(1)
		}
		if len(stack.Frames) == 0 {
			return "", errs.New(errs.InsufficientStars, "", nil)
		}

		p.SetStage("align", int64(len(stack.Frames)))
		offsets, err := align.Run(stack, align.DefaultOptions())
		if err != nil {
			return "", err
		}

		aligned := make([]*image.Image, len(stack.Frames))
		for i, rec := range stack.Frames {
			aligned[i] = images[rec.ImageIndex]
		}

		p.SetStage("stack", int64(len(aligned)))
		result, err := stackio.Accumulate(aligned, offsets)
		if err != nil {
			return "", err
		}
		image.Normalize(result)

		p.SetStage("write", 1)
		if err := ppm.WriteFile(output, result, 0, 1); err != nil {
			return "", err
		}
		return output, nil
	})

	log.Printf("serving on :%d\n", *fPort)
	return server.Engine().Run(fmt.Sprintf(":%d", *fPort))
}
