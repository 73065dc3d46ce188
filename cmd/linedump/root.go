package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/html/inline"
	"github.com/benoitkugler/linebox/html/layout"
	"github.com/benoitkugler/linebox/html/render"
	"github.com/benoitkugler/linebox/logger"
	"github.com/benoitkugler/linebox/text"
	"github.com/benoitkugler/linebox/utils"
)

// config is the resolved configuration of a run, merged
// from the flags, the LINEDUMP_* variables and the config file.
type config struct {
	Width        float64 `mapstructure:"width"`
	FontSize     float64 `mapstructure:"font-size"`
	TextOverflow string  `mapstructure:"text-overflow"`
	Ellipsis     string  `mapstructure:"ellipsis"`
	LineClamp    int     `mapstructure:"line-clamp"`
	PageHeight   float64 `mapstructure:"page-height"`
	Quirks       bool    `mapstructure:"quirks"`
	PNG          string  `mapstructure:"png"`
	Verbose      bool    `mapstructure:"verbose"`
}

func (cf config) layoutOptions() layout.Options {
	return layout.Options{
		Ellipsis:   cf.Ellipsis,
		LineClamp:  cf.LineClamp,
		PageHeight: utils.Fl(cf.PageHeight),
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:           "linedump",
		Short:         "linedump lays out HTML fragments and shows the resulting line boxes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeConfig(v, cfgFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file, in YAML or TOML (default is ./linedump.yaml if present)")
	flags.Float64("width", 400, "width of the root block, in pixels")
	flags.Float64("font-size", 16, "default font size, in pixels")
	flags.String("text-overflow", "clip", "text-overflow applied to every block: clip or ellipsis")
	flags.String("ellipsis", layout.DefaultEllipsis, "string marking truncated lines")
	flags.Int("line-clamp", 0, "maximum number of lines of each block (0 to disable)")
	flags.Float64("page-height", 0, "paginate the layout with pages of this height (0 to disable)")
	flags.Bool("quirks", false, "lay out in quirks mode")
	flags.BoolP("verbose", "v", false, "print the progress messages")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}

	root.AddCommand(newDumpCmd(v), newRenderCmd(v))
	return root
}

// initializeConfig reads the config file, if any, and the environment.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("linedump")
	}

	v.SetEnvPrefix("LINEDUMP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config file: %s", err)
		}
	}
	return nil
}

func loadConfig(v *viper.Viper) (config, error) {
	var cf config
	if err := v.Unmarshal(&cf); err != nil {
		return cf, fmt.Errorf("invalid configuration: %s", err)
	}
	switch cf.TextOverflow {
	case "clip", "ellipsis":
	default:
		return cf, fmt.Errorf("invalid text-overflow %q: expected clip or ellipsis", cf.TextOverflow)
	}
	if cf.Width <= 0 {
		return cf, fmt.Errorf("invalid width %g", cf.Width)
	}
	if !cf.Verbose {
		logger.ProgressLogger.SetOutput(io.Discard)
	}
	return cf, nil
}

// layoutFile loads the HTML fragment at [path] and lays it out.
func layoutFile(path string, cf config) (*inline.Context, *render.Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %s", err)
	}
	defer f.Close()

	root, err := render.FromHTML(f, render.LoadOptions{
		Fonts:    text.NewFontConfiguration(),
		FontSize: utils.Fl(cf.FontSize),
		Width:    utils.Fl(cf.Width),
		Quirks:   cf.Quirks,
	})
	if err != nil {
		return nil, nil, err
	}
	if cf.TextOverflow == "ellipsis" {
		setTextOverflow(root, pr.TextOverflowEllipsis)
	}
	logger.ProgressLogger.Printf("Laying out %s", path)
	c := layout.Layout(root, cf.layoutOptions())
	return c, root, nil
}

func setTextOverflow(block *render.Object, to pr.TextOverflow) {
	block.Style.TextOverflow = to
	for _, child := range block.Children {
		if child.IsBlock() {
			setTextOverflow(child, to)
		}
	}
}
