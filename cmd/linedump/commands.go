package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pr "github.com/benoitkugler/linebox/css/properties"
	"github.com/benoitkugler/linebox/backend/raster"
	"github.com/benoitkugler/linebox/html/layout"
	"github.com/benoitkugler/linebox/logger"
	"github.com/benoitkugler/linebox/utils"
)

func newDumpCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "dump FILE.html",
		Short: "Print the line boxes of each block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := loadConfig(v)
			if err != nil {
				return err
			}
			c, root, err := layoutFile(args[0], cf)
			if err != nil {
				return err
			}
			layout.Dump(c, cmd.OutOrStdout(), root)
			return nil
		},
	}
}

func newRenderCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render FILE.html",
		Short: "Paint the laid out fragment in a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := loadConfig(v)
			if err != nil {
				return err
			}
			if cf.PNG == "" {
				return fmt.Errorf("missing output file (--png)")
			}
			c, root, err := layoutFile(args[0], cf)
			if err != nil {
				return err
			}

			width, height := int(math.Ceil(cf.Width)), int(math.Ceil(float64(root.Frame.Height)))
			if height == 0 {
				height = 1
			}
			canvas := raster.NewCanvas(width, height, pr.RGBA{R: 1, G: 1, B: 1, A: 1})
			layout.Paint(c, root, canvas, utils.Rect{Width: utils.Fl(width), Height: utils.Fl(height)})
			if err := canvas.SavePNG(cf.PNG); err != nil {
				return fmt.Errorf("writing %s: %s", cf.PNG, err)
			}
			logger.ProgressLogger.Printf("Wrote %s (%dx%d)", cf.PNG, width, height)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d\n", cf.PNG, width, height)
			return nil
		},
	}
	cmd.Flags().String("png", "", "output PNG file")
	if err := v.BindPFlag("png", cmd.Flags().Lookup("png")); err != nil {
		panic(err)
	}
	return cmd
}
