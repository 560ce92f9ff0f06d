package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/worldmonitor/gatewayd/pkg/config"
)

var initFlags struct {
	force   bool
	output  string
	noInput bool
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter gatewayd.yaml config file",
	Long: `Create a gatewayd configuration file and an example handler module.

Without --no-input, an interactive form prompts for the listen port, remote
origin, and resource directory.`,
	Example: `  # Interactive setup
  gatewayd init

  # Non-interactive with defaults
  gatewayd init --no-input

  # Overwrite an existing config
  gatewayd init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func init() {
	initCmd.Flags().BoolVar(&initFlags.force, "force", false, "Overwrite existing config file")
	initCmd.Flags().StringVarP(&initFlags.output, "output", "o", config.DefaultConfigFileName, "Output filename")
	initCmd.Flags().BoolVar(&initFlags.noInput, "no-input", false, "Skip prompts and write defaults")
	rootCmd.AddCommand(initCmd)
}

func runInit() error {
	if _, err := os.Stat(initFlags.output); err == nil && !initFlags.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", initFlags.output)
	}

	cfg := config.NewDefault()

	if !initFlags.noInput {
		portStr := strconv.Itoa(cfg.Port)
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Loopback port for the gateway").
					Value(&portStr).
					Validate(func(s string) error {
						n, err := strconv.Atoi(s)
						if err != nil || n < 1 || n > 65535 {
							return errors.New("port must be a number between 1 and 65535")
						}
						return nil
					}),
				huh.NewInput().
					Title("Remote origin for cloud pass-through").
					Value(&cfg.RemoteOrigin),
				huh.NewInput().
					Title("Resource directory (contains the api/ handler folder)").
					Value(&cfg.ResourceDir),
				huh.NewSelect[string]().
					Title("Operating mode").
					Options(
						huh.NewOption("desktop", config.ModeDesktop),
						huh.NewOption("dev", config.ModeDev),
					).
					Value(&cfg.Mode),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
		cfg.Port, _ = strconv.Atoi(portStr)
	}

	if result := config.Validate(cfg); !result.IsValid() {
		return fmt.Errorf("invalid configuration:\n%s", result.Error())
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(initFlags.output, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", initFlags.output)

	if err := writeExampleHandler(cfg.ResourceDir); err != nil {
		return err
	}
	return nil
}

// writeExampleHandler scaffolds resourceDir/api with one example module so
// `gatewayd serve` has something local to answer.
func writeExampleHandler(resourceDir string) error {
	apiDir := filepath.Join(resourceDir, "api")
	if err := os.MkdirAll(apiDir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(apiDir, "hello.expr")
	if _, err := os.Stat(path); err == nil {
		return nil // Don't clobber an existing handler.
	}

	example := `{
  "status": 200,
  "body": {"message": "hello from a local handler", "endpoint": request.endpoint}
}
`
	if err := os.WriteFile(path, []byte(example), 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
