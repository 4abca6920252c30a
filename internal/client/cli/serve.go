package cli

import (
	"fmt"

	"github.com/dmitrijs2005/corral/internal/auth"
	"github.com/dmitrijs2005/corral/internal/client/app"
	"github.com/dmitrijs2005/corral/internal/client/control"
	"github.com/spf13/cobra"
)

func (r *runner) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the device daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.NewApp(r.cfg)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
}

func (r *runner) mintTokenCmd() *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "mint-token",
		Short: "Print a control API access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := auth.GenerateToken(subject, control.Scope, []byte(r.cfg.ControlSecret), r.cfg.ControlTokenValidity)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(r.out, token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", cliSubject, "token subject")
	return cmd
}
