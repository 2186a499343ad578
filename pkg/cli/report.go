package cli

import (
	"context"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/medassist-dev/medassist/pkg/cli/config"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/service/report"
	"github.com/medassist-dev/medassist/pkg/usecase"
	"github.com/medassist-dev/medassist/pkg/utils/logging"
	"github.com/medassist-dev/medassist/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdReport() *cli.Command {
	var patientID string
	var fonts []string
	var output string
	var limit int64
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "patient-id",
			Aliases:     []string{"p"},
			Usage:       "Patient to report on",
			Required:    true,
			Destination: &patientID,
		},
		&cli.StringSliceFlag{
			Name:        "font",
			Usage:       "TrueType font file (first readable file wins)",
			Sources:     cli.EnvVars("MEDASSIST_REPORT_FONT"),
			Destination: &fonts,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output PDF path (defaults to <patient-id>.pdf)",
			Destination: &output,
		},
		&cli.Int64Flag{
			Name:        "limit",
			Usage:       "Number of visits to include, oldest first",
			Value:       model.DefaultVisitLimit,
			Destination: &limit,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "report",
		Usage: "Write a PDF visit report of a patient",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			return withPatients(ctx, &repoCfg, func(uc *usecase.PatientUseCase) error {
				patient, err := uc.Get(ctx, model.PatientID(patientID))
				if err != nil {
					return err
				}
				visits, err := uc.Visits(ctx, patient.ID, int(limit))
				if err != nil {
					return err
				}

				path := output
				if path == "" {
					path = patient.ID.String() + ".pdf"
				}

				// #nosec G304 - path is provided by CLI argument
				f, err := os.Create(path)
				if err != nil {
					return goerr.Wrap(err, "failed to create report file", goerr.V("path", path))
				}
				defer safe.Close(ctx, f)

				if err := report.New(fonts...).Generate(f, &report.Data{
					Patient:     patient,
					Visits:      visits,
					GeneratedAt: time.Now(),
				}); err != nil {
					return goerr.Wrap(err, "failed to generate report", goerr.V("path", path))
				}

				logging.Default().Info("Report written", "path", path, "visits", len(visits))
				return nil
			})
		},
	}
}
