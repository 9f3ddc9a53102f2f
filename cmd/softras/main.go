// softras - software rasterizer
// Renders YAML scenes of spheres, cones and glTF models to BMP or PNG, or
// straight to the terminal.
//
// Commands:
//
//	render  [scene.yaml]   Render every animation frame to image files
//	preview [scene.yaml]   Render one frame as terminal half-blocks
//	init    [scene.yaml]   Write the demo scene as a starting point
//	convert <in> <out.bmp> Re-encode an image through the BMP writer
//
// Without a scene file the built-in demo scene is used.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/ansi"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/taigrr/softras/pkg/render"
	"github.com/taigrr/softras/pkg/scene"
)

var (
	logLevel string
	output   string
	workers  int
	frames   int
	animate  bool
)

func main() {
	root := &cobra.Command{
		Use:   "softras",
		Short: "Software 3D rasterizer",
		Long:  "softras renders triangle meshes on the CPU with Phong lighting, texturing and a depth buffer.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	renderCmd := &cobra.Command{
		Use:   "render [scene.yaml]",
		Short: "Render a scene to image files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args)
		},
	}
	renderCmd.Flags().StringVarP(&output, "out", "o", "", "Output path (.bmp or .png); overrides the scene")
	renderCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Row bands per triangle fill; overrides the scene")
	renderCmd.Flags().IntVarP(&frames, "frames", "f", 0, "Animation frames; overrides the scene")

	previewCmd := &cobra.Command{
		Use:   "preview [scene.yaml]",
		Short: "Render a scene to the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd.Context(), args)
		},
	}
	previewCmd.Flags().BoolVarP(&animate, "animate", "a", false, "Play every animation frame")
	previewCmd.Flags().IntVarP(&frames, "frames", "f", 0, "Animation frames; overrides the scene")

	initCmd := &cobra.Command{
		Use:   "init [scene.yaml]",
		Short: "Write the demo scene",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "scene.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if err := scene.Write(path, scene.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	convertCmd := &cobra.Command{
		Use:   "convert <in> <out.bmp>",
		Short: "Convert an image to BMP",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tex, err := render.LoadTexture(args[0])
			if err != nil {
				return err
			}
			return tex.WriteBMP(args[1])
		},
	}

	root.AddCommand(renderCmd, previewCmd, initCmd, convertCmd)

	if err := fang.Execute(context.Background(), root,
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	render.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// loadScene reads the scene named by args, or the demo scene, and applies
// the command line overrides.
func loadScene(args []string) (scene.Config, error) {
	cfg := scene.Default()
	if len(args) > 0 {
		var err error
		if cfg, err = scene.Load(args[0]); err != nil {
			return cfg, err
		}
	}
	if output != "" {
		cfg.Output = output
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if frames > 0 {
		cfg.Animation.Frames = frames
	}
	return cfg, nil
}

func runRender(ctx context.Context, args []string) error {
	cfg, err := loadScene(args)
	if err != nil {
		return err
	}
	rn, err := scene.New(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	pb := progressbar.Default(int64(rn.Frames()), "rendering")
	defer pb.Close()

	err = rn.Render(ctx, func(frame int, fb *render.Framebuffer) error {
		path := scene.FramePath(cfg.Output, frame, rn.Frames())
		if err := scene.Save(fb, path); err != nil {
			return err
		}
		render.Logger().Info("frame written", "path", path)
		return pb.Add(1)
	})
	if err != nil {
		return err
	}

	render.Logger().Info("render complete", "frames", rn.Frames(), "elapsed", time.Since(start))
	return nil
}

func runPreview(ctx context.Context, args []string) error {
	cfg, err := loadScene(args)
	if err != nil {
		return err
	}
	if !animate {
		cfg.Animation.Frames = 1
	}
	rn, err := scene.New(cfg)
	if err != nil {
		return err
	}

	if !animate {
		if err := rn.RenderFrame(ctx); err != nil {
			return err
		}
		fmt.Print(rn.Framebuffer().Preview())
		return nil
	}

	ticker := time.NewTicker(time.Second / time.Duration(cfg.Animation.FPS))
	defer ticker.Stop()

	return rn.Render(ctx, func(frame int, fb *render.Framebuffer) error {
		fmt.Print(previewFrame(fb, frame == 0))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			return nil
		}
	})
}

// previewFrame renders fb as half-blocks from the top-left corner of the
// terminal, clearing the screen first when first is set.
func previewFrame(fb *render.Framebuffer, first bool) string {
	var out strings.Builder
	if first {
		out.WriteString(ansi.EraseEntireScreen)
	}
	out.WriteString(ansi.CursorHomePosition)
	out.WriteString(fb.Preview())
	return out.String()
}
