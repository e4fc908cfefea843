package testctl

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// buildRootCmdWith constructs the command tree wired to the fn* actions.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "testctl",
		Short:         "Test and dev utilities for shufflerd",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags -> Config
	root.PersistentFlags().IntVar(&cfg.Port, "port", cfg.Port, "Preferred port for the smoke server (defaults SHUFFLERD_SMOKE_PORT or 18080)")
	root.PersistentFlags().StringVar(&cfg.LogLvl, "log-level", cfg.LogLvl, "Log level: debug|info|warn|error (defaults TESTCTL_LOG_LEVEL or info)")
	root.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "How long to wait for the server (defaults TESTCTL_TIMEOUT or 30s)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) { SetLogLevel(cfg.LogLvl) }

	// install group
	installCmd := &cobra.Command{Use: "install", Short: "Install dependencies/tools", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("install requires a subcommand: all|go|swag")
	}}
	installAll := &cobra.Command{Use: "all", Short: "Download modules and install swag", RunE: func(cmd *cobra.Command, args []string) error {
		if err := fnInstallGo(cmd.Context()); err != nil {
			return err
		}
		return fnInstallSwag(cmd.Context())
	}}
	installGoCmd := &cobra.Command{Use: "go", Short: "Download Go modules", RunE: func(cmd *cobra.Command, args []string) error { return fnInstallGo(cmd.Context()) }}
	installSwagCmd := &cobra.Command{Use: "swag", Short: "Install the swag CLI", RunE: func(cmd *cobra.Command, args []string) error { return fnInstallSwag(cmd.Context()) }}
	installCmd.AddCommand(installAll, installGoCmd, installSwagCmd)
	root.AddCommand(installCmd)

	root.AddCommand(&cobra.Command{Use: "docs", Short: "Regenerate swagger docs", RunE: func(cmd *cobra.Command, args []string) error { return fnGenDocs(cmd.Context()) }})

	// test group
	testCmd := &cobra.Command{Use: "test", Short: "Run tests", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("test requires a subcommand: go|e2e|blackbox|live:gemini|swagger|smoke|all")
	}}
	testGo := &cobra.Command{Use: "go", Short: "Run Go unit tests", RunE: func(cmd *cobra.Command, args []string) error { return fnRunGoTests(cmd.Context()) }}
	testE2E := &cobra.Command{Use: "e2e", Short: "Run in-process end-to-end tests", RunE: func(cmd *cobra.Command, args []string) error { return fnRunE2ETests(cmd.Context()) }}
	testBlackbox := &cobra.Command{Use: "blackbox", Short: "Build the binary and run blackbox tests", RunE: func(cmd *cobra.Command, args []string) error { return fnRunBlackboxTests(cmd.Context()) }}
	testGemini := &cobra.Command{Use: "live:gemini", Short: "Run the live Gemini generation test (needs GEMINI_API_KEY)", RunE: func(cmd *cobra.Command, args []string) error { return fnRunGeminiLive(cmd.Context()) }}
	testSwagger := &cobra.Command{Use: "swagger", Short: "Build with the swagger tag", RunE: func(cmd *cobra.Command, args []string) error { return fnRunSwaggerBuild(cmd.Context()) }}
	testSmoke := &cobra.Command{Use: "smoke [generator]", Short: "Start shufflerd and probe its endpoints", Args: cobra.MaximumNArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		gen := "dummy"
		if len(args) == 1 {
			gen = args[0]
		}
		return fnRunSmoke(cmd.Context(), SmokeOptions{Port: cfg.Port, Generator: gen, Width: 64, Height: 32, Timeout: cfg.Timeout})
	}}
	testAll := &cobra.Command{Use: "all", Short: "Go → blackbox → smoke", RunE: func(cmd *cobra.Command, args []string) error {
		if err := fnRunGoTests(cmd.Context()); err != nil {
			return err
		}
		if err := fnRunBlackboxTests(cmd.Context()); err != nil {
			return err
		}
		if err := fnRunSmoke(cmd.Context(), SmokeOptions{Port: cfg.Port, Generator: "dummy", Width: 64, Height: 32, Timeout: cfg.Timeout}); err != nil {
			return err
		}
		if envBool("SHUFFLERD_E2E_GEMINI", false) {
			return fnRunGeminiLive(cmd.Context())
		}
		info("[testctl] SHUFFLERD_E2E_GEMINI not set; skipping live Gemini")
		return nil
	}}
	testCmd.AddCommand(testGo, testE2E, testBlackbox, testGemini, testSwagger, testSmoke, testAll)
	root.AddCommand(testCmd)

	// ports
	var force bool
	portsCmd := &cobra.Command{Use: "ports <port>...", Short: "Check that ports are free", Args: cobra.MinimumNArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		ports := make([]int, 0, len(args))
		for _, a := range args {
			n, err := strconv.Atoi(a)
			if err != nil {
				return fmt.Errorf("invalid port %q", a)
			}
			ports = append(ports, n)
		}
		return fnEnsurePorts(ports, force)
	}}
	portsCmd.Flags().BoolVar(&force, "force", false, "Kill listeners on busy ports")
	root.AddCommand(portsCmd)

	// completion command
	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(os.Stdout) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(os.Stdout, true) }})
	root.AddCommand(completionCmd)

	return root
}
