package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/box-packer/internal/export"
	"github.com/eugenenazirov/box-packer/internal/importer"
	"github.com/eugenenazirov/box-packer/internal/logging"
	"github.com/eugenenazirov/box-packer/internal/packing"
	"github.com/eugenenazirov/box-packer/internal/sample"
	"github.com/eugenenazirov/box-packer/internal/storage"
	"github.com/eugenenazirov/box-packer/internal/validation"
)

type packOptions struct {
	itemsFile   string
	catalogFile string
	strategy    string
	gridStep    float64
	pdf         string
	labels      string
	workbook    string
	previewDir  string
	previewSize int
	stlDir      string
	meshCells   int
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	app := kingpin.New("packer", "Offline box packing: reads an item list and writes packing reports")
	logLevel := app.Flag("log-level", "Log level (debug, info, warn, error)").Default("warn").String()

	packCmd := app.Command("pack", "Pack items from a CSV, XLSX or YAML file")
	opts := packOptions{}
	packCmd.Arg("items", "Item list to pack").Required().ExistingFileVar(&opts.itemsFile)
	packCmd.Flag("catalog", "Container catalog; defaults to the items manifest or the built-in catalog").ExistingFileVar(&opts.catalogFile)
	packCmd.Flag("strategy", "Packing strategy (ffd, bfd, auto)").Default(string(packing.StrategyAuto)).StringVar(&opts.strategy)
	packCmd.Flag("grid-step", "Spacing of candidate placement positions").Default("1").Float64Var(&opts.gridStep)
	packCmd.Flag("pdf", "Write a PDF report to this path").StringVar(&opts.pdf)
	packCmd.Flag("labels", "Write printable box labels to this path").StringVar(&opts.labels)
	packCmd.Flag("xlsx", "Write an Excel workbook to this path").StringVar(&opts.workbook)
	packCmd.Flag("preview-dir", "Write a top view PNG per container into this directory").StringVar(&opts.previewDir)
	packCmd.Flag("preview-scale", "Pixels per unit length in previews").Default("8").IntVar(&opts.previewSize)
	packCmd.Flag("stl-dir", "Write an STL mesh per container into this directory").StringVar(&opts.stlDir)
	packCmd.Flag("mesh-cells", "Marching cubes resolution along the longest side").Default(fmt.Sprint(export.DefaultMeshCells)).IntVar(&opts.meshCells)

	sampleCmd := app.Command("sample", "Print the sample data set as a YAML manifest")
	sampleOut := sampleCmd.Flag("output", "Write to this file instead of stdout").Short('o').String()

	command, err := app.Parse(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(*logLevel)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	switch command {
	case packCmd.FullCommand():
		return pack(opts, stdout, logger)
	case sampleCmd.FullCommand():
		return writeSample(*sampleOut, stdout)
	}
	return nil
}

func pack(opts packOptions, stdout io.Writer, logger *zap.Logger) error {
	strategy, err := packing.ParseStrategy(opts.strategy)
	if err != nil {
		return err
	}
	if opts.gridStep <= 0 {
		return fmt.Errorf("grid step %v: %w", opts.gridStep, packing.ErrInvalidGridStep)
	}

	imported := importer.ImportItems(opts.itemsFile)
	for _, warning := range imported.Warnings {
		logger.Warn("item import", zap.String("warning", warning))
	}
	if err := imported.Err(); err != nil {
		return fmt.Errorf("import %s: %w", opts.itemsFile, err)
	}
	if err := validation.Items(imported.Items); err != nil {
		return err
	}

	types, err := loadCatalog(opts, logger)
	if err != nil {
		return err
	}

	engine := packing.NewEngine(packing.WithGridStep(opts.gridStep))
	result, err := engine.Run(imported.Items, types, strategy)
	if err != nil {
		return err
	}
	logger.Info("packing finished",
		zap.String("strategy", result.Label),
		zap.Int("containers", result.ContainerCount),
		zap.Int("unplaced", len(result.Unplaced)),
	)

	packed := storage.NewRunStore(1).Save(storage.Run{Items: imported.Items, Result: result})
	if err := writeSummary(stdout, packed); err != nil {
		return err
	}
	return writeOutputs(opts, packed, logger)
}

// loadCatalog prefers an explicit catalog, then the container_types section
// of a YAML items manifest, then the built-in catalog.
func loadCatalog(opts packOptions, logger *zap.Logger) ([]packing.ContainerType, error) {
	if opts.catalogFile != "" {
		imported := importer.ImportContainerTypes(opts.catalogFile)
		if err := imported.Err(); err != nil {
			return nil, fmt.Errorf("import %s: %w", opts.catalogFile, err)
		}
		if err := validation.ContainerTypes(imported.ContainerTypes); err != nil {
			return nil, err
		}
		return imported.ContainerTypes, nil
	}

	if format, err := importer.FormatFor(opts.itemsFile); err == nil && format == importer.FormatYAML {
		imported := importer.ImportContainerTypes(opts.itemsFile)
		if imported.Err() == nil && validation.ContainerTypes(imported.ContainerTypes) == nil {
			return imported.ContainerTypes, nil
		}
	}

	logger.Info("using built-in container catalog")
	return storage.DefaultContainerTypes(), nil
}

func writeSummary(w io.Writer, run storage.Run) error {
	result := run.Result
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Run\t%s\n", run.ID)
	fmt.Fprintf(tw, "Algorithm\t%s\n", result.Label)
	fmt.Fprintf(tw, "Containers\t%d\n", result.ContainerCount)
	fmt.Fprintf(tw, "Efficiency\t%.2f%%\n", result.Efficiency)
	fmt.Fprintf(tw, "Items packed\t%d/%d\n", result.PlacedCount(), result.ItemCount())
	fmt.Fprintln(tw)
	for _, c := range result.Containers {
		fmt.Fprintf(tw, "#%d\t%s\t%d items\t%.2f%%\n", c.ID, c.Type.Name, len(c.Items), c.Efficiency())
	}
	for _, item := range result.Unplaced {
		fmt.Fprintf(tw, "unplaced\t%s\t%gx%gx%g\t\n", item.Name, item.Length, item.Breadth, item.Height)
	}
	return tw.Flush()
}

func writeOutputs(opts packOptions, run storage.Run, logger *zap.Logger) error {
	documents := []struct {
		path  string
		write func(io.Writer, storage.Run) error
	}{
		{opts.pdf, export.WritePDF},
		{opts.labels, export.WriteLabels},
		{opts.workbook, export.WriteWorkbook},
	}
	for _, doc := range documents {
		if doc.path == "" {
			continue
		}
		if err := writeFile(doc.path, func(w io.Writer) error { return doc.write(w, run) }); err != nil {
			return err
		}
		logger.Info("wrote export", zap.String("path", doc.path))
	}

	for _, c := range run.Result.Containers {
		if opts.previewDir != "" {
			path := filepath.Join(opts.previewDir, fmt.Sprintf("container-%d.png", c.ID))
			if err := writeFile(path, func(w io.Writer) error { return export.WritePreview(w, c, opts.previewSize) }); err != nil {
				return err
			}
		}
		if opts.stlDir != "" {
			if err := os.MkdirAll(opts.stlDir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(opts.stlDir, fmt.Sprintf("container-%d.stl", c.ID))
			if err := export.WriteSTL(path, c, opts.meshCells); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			logger.Debug("wrote mesh", zap.String("path", path))
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeSample(path string, stdout io.Writer) error {
	data, err := yaml.Marshal(sample.Load())
	if err != nil {
		return err
	}
	if path == "" {
		_, err = stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
