package main

import (
	"fmt"

	"github.com/marmos91/dittoprovider/pkg/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a commented configuration file with every default value.
Without --path the file goes to the default config location.`,
	RunE: runInit,
}

var (
	initForce bool
	initPath  string
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config file")
	initCmd.Flags().StringVarP(&initPath, "path", "p", "", "Write the config file to this path")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := initPath
	if path == "" {
		var err error
		path, err = config.InitConfig(initForce)
		if err != nil {
			return err
		}
	} else if err := config.InitConfigToPath(path, initForce); err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s\n", path)
	return nil
}
