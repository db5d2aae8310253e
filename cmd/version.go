package cmd

import (
	"fmt"
	"runtime"

	"example.com/outcry/config"

	"github.com/spf13/cobra"
)

// BuildInfo contains information about the build, set through -ldflags
var BuildInfo struct {
	GitCommit string
	BuildTime string
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long:  `Display the version, build information, and runtime environment of the back office.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		displayVersion(cmd, cfg.App)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// displayVersion shows detailed version information
func displayVersion(cmd *cobra.Command, app config.AppConfig) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, app.Name)
	fmt.Fprintf(out, "Version:    %s\n", app.Version)
	fmt.Fprintf(out, "Git Commit: %s\n", BuildInfo.GitCommit)
	fmt.Fprintf(out, "Built:      %s\n", BuildInfo.BuildTime)
	fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
