package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"rxclaims/internal/config"
)

var errInvalidConfig = errors.New("configuration is invalid")

func newValidateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, _, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if printIssues(cmd.OutOrStdout(), config.ValidatePipeline(*p)) {
				return errInvalidConfig
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	}
	return cmd
}
