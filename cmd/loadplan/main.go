// Command loadplan prints a load plan for a YAML manifest.
//
//	loadplan --manifest plan.yaml [--config config.yaml] [--format text|json]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/load-planner/internal/application"
	"github.com/eugenenazirov/load-planner/internal/config"
	"github.com/eugenenazirov/load-planner/internal/logging"
	"github.com/eugenenazirov/load-planner/internal/packer"
	"github.com/eugenenazirov/load-planner/internal/plan"
)

type options struct {
	manifest   string
	configFile string
	format     string
	logLevel   string
}

func main() {
	kingpinApp := kingpin.New("loadplan", "Plan box placement for a truck bed or shipping container")
	var opts options
	kingpinApp.Flag("manifest", "Path to the YAML planning manifest").Short('m').Required().StringVar(&opts.manifest)
	kingpinApp.Flag("config", "Path to YAML configuration file with catalog presets").StringVar(&opts.configFile)
	kingpinApp.Flag("format", "Output format").Default("text").EnumVar(&opts.format, "text", "json")
	kingpinApp.Flag("log-level", "Log level (debug, info, warn, error)").Default("warn").StringVar(&opts.logLevel)

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "loadplan: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	cfg, err := config.Load(&config.CLIOverrides{ConfigFile: opts.configFile, LogLevel: &opts.logLevel})
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := application.NewCatalog(cfg)
	if err != nil {
		return err
	}

	req, err := plan.LoadManifest(opts.manifest)
	if err != nil {
		return err
	}

	outcome, err := plan.NewService(packer.New(), store, plan.WithLogger(logger)).Plan(ctx, req)
	if err != nil {
		logger.Debug("plan failed", zap.String("manifest", opts.manifest), zap.Error(err))
		return err
	}

	if opts.format == "json" {
		return writeJSON(out, outcome)
	}
	return writeText(out, outcome)
}

type jsonOutput struct {
	Container          packer.Container   `json:"container"`
	ContainerPreset    string             `json:"containerPreset,omitempty"`
	TruckClass         string             `json:"truckClass,omitempty"`
	WeightBudget       float64            `json:"weightBudget"`
	Placements         []packer.PlacedBox `json:"placements"`
	RequestedCount     int                `json:"requestedCount"`
	PlacedCount        int                `json:"placedCount"`
	UsedVolumePercent  float64            `json:"usedVolumePercent"`
	TotalWeight        float64            `json:"totalWeight"`
	WeightLimitReached bool               `json:"weightLimitReached"`
	Truncated          bool               `json:"truncated"`
}

func writeJSON(out io.Writer, o plan.Outcome) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonOutput{
		Container:          o.Container,
		ContainerPreset:    o.ContainerPreset,
		TruckClass:         o.TruckClass,
		WeightBudget:       o.WeightBudget,
		Placements:         o.Result.Placements,
		RequestedCount:     o.RequestedUnits,
		PlacedCount:        o.Result.PlacedCount(),
		UsedVolumePercent:  o.Result.UsedVolumePercent,
		TotalWeight:        o.Result.TotalWeight,
		WeightLimitReached: o.Result.WeightLimitReached(),
		Truncated:          o.Truncated(),
	})
}

func writeText(out io.Writer, o plan.Outcome) error {
	c := o.Container
	fmt.Fprintf(out, "Container: %g x %g x %g cm (%.2f m3)", c.Width, c.Length, c.Height, c.VolumeCubicMeters())
	if o.ContainerPreset != "" {
		fmt.Fprintf(out, " [%s]", o.ContainerPreset)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Used volume: %.2f%%\n", o.Result.UsedVolumePercent)
	fmt.Fprintf(out, "Total weight: %.2f / %.0f kg\n", o.Result.TotalWeight, o.WeightBudget)
	fmt.Fprintf(out, "Placed: %d of %d units\n", o.Result.PlacedCount(), o.RequestedUnits)
	if o.Result.WeightLimitReached() {
		fmt.Fprintln(out, "WARNING: total weight has reached the weight budget")
	}

	counts := o.Result.PlacedByBox()
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(out, "  %s: %d\n", id, counts[id])
	}

	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tBOX\tX\tY\tZ\tW\tL\tH\tKG")
	for i, p := range o.Result.Placements {
		fmt.Fprintf(tw, "%d\t%s\t%g\t%g\t%g\t%g\t%g\t%g\t%g\n",
			i+1, p.BoxID, p.Position.X, p.Position.Y, p.Position.Z, p.Width, p.Length, p.Height, p.Weight)
	}
	return tw.Flush()
}
