package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grokify/releaseconductor/internal/config"
	"github.com/grokify/releaseconductor/internal/console"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter release config to the working directory",
	Long: `Write release.config.yaml with the default settings so they can be edited.

Examples:
  # Single package repository
  releaseconductor init

  # Monorepo with packages under packages/<name>
  releaseconductor init --monorepo

  # Replace an existing config file
  releaseconductor init --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	initCmd.Flags().Bool("monorepo", false, "Include the monorepo settings")
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	monorepo, _ := cmd.Flags().GetBool("monorepo")

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	path, err := config.WriteScaffold(workDir, monorepo, force)
	if err != nil {
		return err
	}
	console.Stderr().Success("Config written to "+path, false)
	return nil
}
