package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hession/contextseek/internal/cli"
	"github.com/hession/contextseek/internal/config"
	"github.com/hession/contextseek/internal/logger"
)

var (
	version = "0.1.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "contextseek",
		Short: "ContextSeek - Find the original source of media content",
		Long: `ContextSeek finds the original sources of quotes, images and video clips.

It can:
  • Trace a quote or text snippet back to where it was first published
  • Reverse search an image, optionally matching detected faces
  • Trace a video clip back to the full video it was cut from
  • Filter text searches by source category (article, book, video, movie, study, social)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Start interactive CLI
			return cli.Run(cfg)
		},
	}

	// text subcommand: one-shot text search
	var textSources string
	textCmd := &cobra.Command{
		Use:   "text <quote or snippet>",
		Short: "Search the original source of a quote or text snippet",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession()
			if err != nil {
				return err
			}
			defer session.Close()

			if textSources != "" {
				if err := session.SetSources(textSources); err != nil {
					return err
				}
			}
			return session.SearchText(cmd.Context(), strings.Join(args, " "))
		},
	}
	textCmd.Flags().StringVar(&textSources, "sources", "", "comma-separated source tags (article,book,video,movie,study,social)")

	// image subcommand: one-shot reverse image search
	var noFaces, noSocial bool
	imageCmd := &cobra.Command{
		Use:   "image <file>",
		Short: "Reverse search a local image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession()
			if err != nil {
				return err
			}
			defer session.Close()

			return session.SearchImage(cmd.Context(), args[0], !noFaces, !noSocial)
		},
	}
	imageCmd.Flags().BoolVar(&noFaces, "no-faces", false, "skip face detection and face matching")
	imageCmd.Flags().BoolVar(&noSocial, "no-social", false, "exclude social media results")

	// video subcommand: one-shot video context search
	videoCmd := &cobra.Command{
		Use:   "video <url or file>",
		Short: "Trace a video clip back to its full video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := newSession()
			if err != nil {
				return err
			}
			defer session.Close()

			return session.SearchVideo(cmd.Context(), args[0])
		},
	}

	// config subcommand
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			fmt.Println(cfg.String())

			path, _ := config.ConfigPath()
			fmt.Printf("\nConfig file path: %s\n", path)
			return nil
		},
	}

	// version subcommand
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ContextSeek v%s\n", version)
		},
	}

	rootCmd.AddCommand(textCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and brings the file logger up
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.Config{
		LogDir:  config.LogDir(),
		Level:   logger.INFO,
		MaxDays: 7,
	}); err != nil {
		// Logging is best effort; the CLI still works without it
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	return cfg, nil
}

// newSession loads config and builds a one-shot search session
func newSession() (*cli.Session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	session, err := cli.NewSession(cfg, os.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	return session, nil
}
