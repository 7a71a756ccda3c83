// Command iconic builds engraved folder icons and manages the icons
// attached to files and folders.
//
// Usage:
//
//	iconic mask -input art.png -template folder.icns -output out.icns
//	iconic get -path ~/Documents -output icon.png
//	iconic set -path ~/Documents -icon icon.png
package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/philocalyst/iconic"
	"github.com/philocalyst/iconic/internal/imageio"
	"github.com/philocalyst/iconic/internal/platform"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "mask":
		err = runMask(os.Args[2:])
	case "get":
		err = runGet(os.Args[2:])
	case "set":
		err = runSet(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "iconic: unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "iconic: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  iconic mask -input <image> -template <icon> -output <dest> [-config <toml>] [-v]
  iconic get  -path <target> -output <dest> [-v]
  iconic set  -path <target> -icon <image> [-v]`)
}

// enableLogging wires slog to stderr when -v is set.
func enableLogging(verbose bool) {
	if !verbose {
		return
	}
	iconic.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
}

func runMask(args []string) error {
	fs := flag.NewFlagSet("mask", flag.ExitOnError)
	input := fs.String("input", "", "source image for the silhouette")
	template := fs.String("template", "", "folder template icon (icns/ico/png)")
	output := fs.String("output", "", "destination: directory, .icns, .ico, or .png")
	config := fs.String("config", "", "engraving settings file (TOML)")
	verbose := fs.Bool("v", false, "verbose logging")
	_ = fs.Parse(args)
	enableLogging(*verbose)

	if *input == "" || *template == "" || *output == "" {
		return fmt.Errorf("mask: -input, -template, and -output are required")
	}

	inputs := iconic.DefaultEngravingInputs()
	if *config != "" {
		var err error
		inputs, err = iconic.LoadEngravingInputs(*config)
		if err != nil {
			return err
		}
	}

	src, err := imageio.Load(*input)
	if err != nil {
		return err
	}
	templateReps, err := imageio.LoadAll(*template)
	if err != nil {
		return err
	}

	mask := iconic.NewImage(iconic.FromImage(src))
	mask, err = iconic.SharedTrimmer().Trimmed(mask)
	if err != nil {
		return err
	}

	templates := make([]*iconic.Image, len(templateReps))
	for i, rep := range templateReps {
		templates[i] = iconic.NewImage(iconic.FromImage(rep))
	}

	layers, err := iconic.NewEngraver(inputs).Engrave(mask, templates)
	if len(layers) == 0 && err != nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "iconic: warning: %v\n", err)
	}

	out := make([]image.Image, 0, len(layers))
	for _, layer := range layers {
		pm, err := layer.Materialize()
		if err != nil {
			return err
		}
		out = append(out, pm.ToImage())
	}
	return imageio.WriteContainer(*output, out)
}

func runGet(args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	path := fs.String("path", "", "file or folder to read the icon from")
	output := fs.String("output", "", "destination image path")
	verbose := fs.Bool("v", false, "verbose logging")
	_ = fs.Parse(args)
	enableLogging(*verbose)

	if *path == "" || *output == "" {
		return fmt.Errorf("get: -path and -output are required")
	}

	icon, err := platform.IconForPath(*path)
	if err != nil {
		return err
	}
	return imageio.WriteContainer(*output, []image.Image{icon})
}

func runSet(args []string) error {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	path := fs.String("path", "", "file or folder to attach the icon to")
	icon := fs.String("icon", "", "image to attach")
	verbose := fs.Bool("v", false, "verbose logging")
	_ = fs.Parse(args)
	enableLogging(*verbose)

	if *path == "" || *icon == "" {
		return fmt.Errorf("set: -path and -icon are required")
	}

	img, err := imageio.Load(*icon)
	if err != nil {
		return err
	}
	return platform.SetIconForPath(*path, img)
}
