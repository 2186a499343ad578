package report_test

import (
	"bytes"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/medassist-dev/medassist/pkg/domain/model"
	"github.com/medassist-dev/medassist/pkg/service/report"
)

func findFont(t *testing.T) string {
	t.Helper()
	if path := os.Getenv("TEST_REPORT_FONT"); path != "" {
		return path
	}
	for _, path := range report.DefaultFontPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	t.Skip("no TrueType font available; set TEST_REPORT_FONT")
	return ""
}

func TestGenerator_Generate(t *testing.T) {
	t.Run("writes a PDF document", func(t *testing.T) {
		gen := report.New(findFont(t))

		var visits []*model.Visit
		for i := range 40 {
			visits = append(visits, &model.Visit{
				ConversationID: int64(i + 1),
				Date:           time.Date(2025, 1, 1+i%28, 9, 0, 0, 0, time.UTC),
				ChiefComplaint: fmt.Sprintf("complaint %d", i),
				Summary:        "Patient reports intermittent symptoms over several days with gradual improvement after rest.",
				Symptoms:       "headache, nausea",
				Diagnoses:      "tension headache, migraine",
			})
		}

		var buf bytes.Buffer
		err := gen.Generate(&buf, &report.Data{
			Patient: &model.Patient{ID: "P-001", Name: "Alice Smith", Age: 34, Gender: "Female"},
			Visits:  visits,
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-"))).True()
	})

	t.Run("writes a report without visits", func(t *testing.T) {
		gen := report.New(findFont(t))

		var buf bytes.Buffer
		err := gen.Generate(&buf, &report.Data{
			Patient: &model.Patient{ID: "P-002", Name: "Bob", Age: 50, Gender: "Male"},
		})
		gt.NoError(t, err).Required()
		gt.Number(t, buf.Len()).NotEqual(0)
	})

	t.Run("fails without a usable font", func(t *testing.T) {
		gen := report.New("/nonexistent/font.ttf")

		var buf bytes.Buffer
		err := gen.Generate(&buf, &report.Data{
			Patient: &model.Patient{ID: "P-001", Name: "Alice", Age: 34, Gender: "Female"},
		})
		gt.Value(t, err).NotNil()
		gt.Number(t, buf.Len()).Equal(0)
	})

	t.Run("requires patient", func(t *testing.T) {
		gen := report.New("/nonexistent/font.ttf")
		gt.Value(t, gen.Generate(&bytes.Buffer{}, &report.Data{})).NotNil()
	})
}
