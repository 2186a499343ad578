package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/medassist-dev/medassist/pkg/cli/config"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/usecase"
	"github.com/medassist-dev/medassist/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// withPatients opens the repository and runs fn against the patient use case
func withPatients(ctx context.Context, repoCfg *config.Repository, fn func(*usecase.PatientUseCase) error) error {
	repo, err := repoCfg.Configure(ctx)
	if err != nil {
		return err
	}
	defer safe.Close(ctx, repo)

	return fn(usecase.New(repo).Patient)
}

func cmdPatient() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:    "patient",
		Aliases: []string{"p"},
		Usage:   "Manage patients",
		Flags:   repoCfg.Flags(),
		Commands: []*cli.Command{
			cmdPatientRegister(&repoCfg),
			cmdPatientList(&repoCfg),
			cmdPatientShow(&repoCfg),
			cmdPatientDelete(&repoCfg),
		},
	}
}

func cmdPatientRegister(repoCfg *config.Repository) *cli.Command {
	var input usecase.RegisterPatientInput
	var age int64

	return &cli.Command{
		Name:  "register",
		Usage: "Register a new patient",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "Patient ID", Required: true, Destination: &input.ID},
			&cli.StringFlag{Name: "name", Usage: "Full name", Required: true, Destination: &input.Name},
			&cli.Int64Flag{Name: "age", Usage: "Age in years", Required: true, Destination: &age},
			&cli.StringFlag{Name: "gender", Usage: "Gender", Required: true, Destination: &input.Gender},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			input.Age = int(age)
			return withPatients(ctx, repoCfg, func(uc *usecase.PatientUseCase) error {
				patient, err := uc.Register(ctx, input)
				if err != nil {
					return err
				}
				fmt.Fprintf(writerOf(c), "Registered %s (%s)\n", patient.ID, patient.Name)
				return nil
			})
		},
	}
}

func cmdPatientList(repoCfg *config.Repository) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List registered patients",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withPatients(ctx, repoCfg, func(uc *usecase.PatientUseCase) error {
				patients, err := uc.List(ctx)
				if err != nil {
					return err
				}
				printPatients(writerOf(c), patients)
				return nil
			})
		},
	}
}

func cmdPatientShow(repoCfg *config.Repository) *cli.Command {
	var id string
	var limit int64

	return &cli.Command{
		Name:  "show",
		Usage: "Show a patient with visits and open conversations",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "Patient ID", Required: true, Destination: &id},
			&cli.Int64Flag{Name: "limit", Usage: "Number of visits", Value: model.DefaultVisitLimit, Destination: &limit},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withPatients(ctx, repoCfg, func(uc *usecase.PatientUseCase) error {
				patient, err := uc.Get(ctx, model.PatientID(id))
				if err != nil {
					return err
				}
				visits, err := uc.Visits(ctx, patient.ID, int(limit))
				if err != nil {
					return err
				}
				convs, err := uc.Conversations(ctx, patient.ID)
				if err != nil {
					return err
				}

				w := writerOf(c)
				printPatients(w, []*model.Patient{patient})
				fmt.Fprintf(w, "\nVisits:\n")
				for _, v := range visits {
					fmt.Fprintf(w, "  #%d %s %s\n    Symptoms: %s\n    Diagnoses: %s\n    Summary: %s\n",
						v.ConversationID,
						v.Date.Local().Format(usecase.VisitDateLayout),
						v.ChiefComplaint,
						v.Symptoms,
						v.Diagnoses,
						v.Summary)
				}
				for _, conv := range convs {
					if !conv.Closed() {
						fmt.Fprintf(w, "Open conversation #%d: %s\n", conv.ID, conv.ChiefComplaint)
					}
				}
				return nil
			})
		},
	}
}

func cmdPatientDelete(repoCfg *config.Repository) *cli.Command {
	var id string

	return &cli.Command{
		Name:  "delete",
		Usage: "Delete a patient and all of their records",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "Patient ID", Required: true, Destination: &id},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withPatients(ctx, repoCfg, func(uc *usecase.PatientUseCase) error {
				if err := uc.Delete(ctx, model.PatientID(id)); err != nil {
					return err
				}
				fmt.Fprintf(writerOf(c), "Deleted %s\n", id)
				return nil
			})
		},
	}
}

func writerOf(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func printPatients(w io.Writer, patients []*model.Patient) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tAGE\tGENDER\tREGISTERED")
	for _, p := range patients {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", p.ID, p.Name, p.Age, p.Gender, p.CreatedAt.Local().Format(usecase.VisitDateLayout))
	}
	_ = tw.Flush()
}
