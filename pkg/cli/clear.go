package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/cli/config"
	"github.com/medassist-dev/medassist/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdClear() *cli.Command {
	var yes bool
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "yes",
			Usage:       "Confirm deletion of every patient, conversation, message and history entry",
			Destination: &yes,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "clear",
		Usage: "Delete all stored data",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if !yes {
				return goerr.New("refusing to delete all data without --yes")
			}

			return withPatients(ctx, &repoCfg, func(uc *usecase.PatientUseCase) error {
				if err := uc.ClearAll(ctx); err != nil {
					return err
				}
				fmt.Fprintln(writerOf(c), "All data deleted")
				return nil
			})
		},
	}
}
