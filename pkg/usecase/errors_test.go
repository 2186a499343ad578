package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/medassist-dev/medassist/pkg/usecase"
)

func TestErrors_ErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		usecase.ErrPatientNotFound,
		usecase.ErrConversationNotFound,
		usecase.ErrSessionNotFound,
		usecase.ErrDuplicatePatient,
		usecase.ErrInvalidPatient,
		usecase.ErrConsultationInProgress,
		usecase.ErrNoActiveConsultation,
		usecase.ErrNotSummarizing,
		usecase.ErrTurnInFlight,
		usecase.ErrEmptyMessage,
		usecase.ErrEmptyChiefComplaint,
		usecase.ErrEmptySummaryField,
	}

	for i, a := range sentinels {
		gt.Value(t, a).NotNil()
		for j, b := range sentinels {
			if i != j {
				gt.Bool(t, errors.Is(a, b)).False()
			}
		}
	}
}

func TestErrors_SurviveWrapping(t *testing.T) {
	err := goerr.Wrap(usecase.ErrTurnInFlight, "busy", goerr.V(usecase.SessionIDKey, "s-1"))
	gt.Error(t, err).Is(usecase.ErrTurnInFlight)

	var ge *goerr.Error
	gt.Bool(t, errors.As(err, &ge)).True()
	gt.Value(t, ge.Values()[usecase.SessionIDKey]).Equal("s-1")
}
