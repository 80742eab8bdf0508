package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedAtNumbering() (*model.Letter, uuid.UUID) {
	letter, byStep := processingLetter(model.StepNumbering)
	now := time.Now()
	letter.SignedAt = &now
	letter.SignatureURL = "http://files.test/signatures/sig.png"
	return letter, byStep[model.StepNumbering]
}

func newNumberingService(letters *mockLetterRepo, numbers *mockNumberRepo, versions *mockVersionRepo, history *mockHistoryRepo, renderer *mockRenderer) NumberingService {
	if versions == nil {
		versions = &mockVersionRepo{}
	}
	if history == nil {
		history = &mockHistoryRepo{}
	}
	if renderer == nil {
		renderer = &mockRenderer{}
	}
	return NewNumberingService(letters, numbers, versions, history, renderer, &mockBlobStorage{}, mockTx{}, nil, testLogger())
}

func TestAssignNumberCompletesLetter(t *testing.T) {
	letter, numberer := signedAtNumbering()
	letters := singleLetterRepo(letter)
	history := &mockHistoryRepo{}
	versions := &mockVersionRepo{}
	numbers := &mockNumberRepo{
		NextCounterFn: func(ctx context.Context, typeCode string, date time.Time) (int, error) {
			assert.Equal(t, "PKL", typeCode)
			return 7, nil
		},
		CreateFn: func(ctx context.Context, number *model.LetterNumber) error {
			number.ID = uuid.New()
			return nil
		},
	}

	var renderedNumber *string
	renderer := &mockRenderer{
		RenderFn: func(values map[string]interface{}, numberOverride *string, signatureURL string) ([]byte, error) {
			renderedNumber = numberOverride
			assert.Equal(t, letter.SignatureURL, signatureURL)
			return []byte("<html>final</html>"), nil
		},
	}

	svc := newNumberingService(letters, numbers, versions, history, renderer)
	resp, err := svc.AssignNumber(context.Background(), letter.ID.String(), numberer.String(), AssignNumberRequest{})
	require.NoError(t, err)

	now := time.Now()
	wantNumber := fmt.Sprintf("007/E-OFF/PKL/%s/%d", romanMonth(now.Month()), now.Year())
	assert.Equal(t, wantNumber, resp.Number)
	assert.Equal(t, 7, resp.Counter)
	assert.Equal(t, model.LetterCompleted, resp.Status)
	require.NotNil(t, renderedNumber)
	assert.Equal(t, wantNumber, *renderedNumber)

	assert.Equal(t, model.LetterCompleted, letter.Status)
	assert.Nil(t, letter.CurrentStep)
	assert.Equal(t, 1, letter.LatestPDFVersion)

	require.Len(t, versions.versions, 1)
	pdf := versions.versions[0]
	assert.Equal(t, model.FormatPDF, pdf.Format)
	assert.True(t, pdf.IsPDF)
	assert.False(t, pdf.IsEditable)

	require.Len(t, history.entries, 1)
	entry := history.entries[0]
	assert.Equal(t, model.ActionNumbered, entry.Action)
	assert.Nil(t, entry.ToStep)
	assert.Equal(t, wantNumber, entry.Metadata["number"])

	assert.Empty(t, numbers.deleted, "no compensation on the happy path")
}

func TestAssignNumberRequiresNumberingAssignee(t *testing.T) {
	letter, _ := signedAtNumbering()
	letters := singleLetterRepo(letter)

	svc := newNumberingService(letters, &mockNumberRepo{}, nil, nil, nil)
	_, err := svc.AssignNumber(context.Background(), letter.ID.String(), uuid.NewString(), AssignNumberRequest{})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestAssignNumberRequiresSignature(t *testing.T) {
	letter, byStep := processingLetter(model.StepNumbering)
	letters := singleLetterRepo(letter)

	svc := newNumberingService(letters, &mockNumberRepo{}, nil, nil, nil)
	_, err := svc.AssignNumber(context.Background(), letter.ID.String(), byStep[model.StepNumbering].String(), AssignNumberRequest{})
	assert.ErrorIs(t, err, apperr.ErrNotSigned)
}

func TestAssignNumberRejectsWrongStep(t *testing.T) {
	letter, byStep := processingLetter(model.StepViceDean)
	letters := singleLetterRepo(letter)

	svc := newNumberingService(letters, &mockNumberRepo{}, nil, nil, nil)
	_, err := svc.AssignNumber(context.Background(), letter.ID.String(), byStep[model.StepViceDean].String(), AssignNumberRequest{})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestAssignNumberPropagatesDuplicate(t *testing.T) {
	letter, numberer := signedAtNumbering()
	letters := singleLetterRepo(letter)
	numbers := &mockNumberRepo{
		NextCounterFn: func(ctx context.Context, typeCode string, date time.Time) (int, error) {
			return 3, nil
		},
		CreateFn: func(ctx context.Context, number *model.LetterNumber) error {
			return fmt.Errorf("number %q already taken: %w", number.Number, apperr.ErrDuplicateNumber)
		},
	}

	svc := newNumberingService(letters, numbers, nil, nil, nil)
	_, err := svc.AssignNumber(context.Background(), letter.ID.String(), numberer.String(), AssignNumberRequest{})
	assert.ErrorIs(t, err, apperr.ErrDuplicateNumber)
	assert.Equal(t, model.LetterProcessing, letter.Status, "letter untouched when the reservation fails")
}

func TestAssignNumberCompensatesOnPDFFailure(t *testing.T) {
	letter, numberer := signedAtNumbering()
	letters := singleLetterRepo(letter)
	history := &mockHistoryRepo{}

	reservationID := uuid.New()
	numbers := &mockNumberRepo{
		NextCounterFn: func(ctx context.Context, typeCode string, date time.Time) (int, error) {
			return 1, nil
		},
		CreateFn: func(ctx context.Context, number *model.LetterNumber) error {
			number.ID = reservationID
			return nil
		},
	}
	renderer := &mockRenderer{
		ToPDFFn: func(html []byte) ([]byte, error) {
			return nil, errBoom
		},
	}

	svc := newNumberingService(letters, numbers, nil, history, renderer)
	_, err := svc.AssignNumber(context.Background(), letter.ID.String(), numberer.String(), AssignNumberRequest{})
	assert.ErrorIs(t, err, apperr.ErrStorage)

	require.Len(t, numbers.deleted, 1)
	assert.Equal(t, reservationID, numbers.deleted[0])
	assert.Equal(t, model.LetterProcessing, letter.Status)
	assert.Empty(t, history.entries, "the ledger never records a rolled-back numbering")
}

func TestAssignNumberCompensatesWhenLetterMoved(t *testing.T) {
	letter, numberer := signedAtNumbering()
	history := &mockHistoryRepo{}

	// The first read passes the preconditions; by finalize time the letter
	// has been cancelled by a concurrent transition.
	reads := 0
	letters := &mockLetterRepo{
		FindByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Letter, error) {
			return letter, nil
		},
		FindByIDForUpdateFn: func(ctx context.Context, id uuid.UUID) (*model.Letter, error) {
			reads++
			moved := *letter
			moved.Status = model.LetterCancelled
			moved.CurrentStep = nil
			return &moved, nil
		},
		UpdateFn: func(ctx context.Context, updated *model.Letter) error {
			*letter = *updated
			return nil
		},
	}

	reservationID := uuid.New()
	numbers := &mockNumberRepo{
		NextCounterFn: func(ctx context.Context, typeCode string, date time.Time) (int, error) {
			return 1, nil
		},
		CreateFn: func(ctx context.Context, number *model.LetterNumber) error {
			number.ID = reservationID
			return nil
		},
	}

	svc := newNumberingService(letters, numbers, nil, history, nil)
	_, err := svc.AssignNumber(context.Background(), letter.ID.String(), numberer.String(), AssignNumberRequest{})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
	assert.Equal(t, 1, reads)

	require.Len(t, numbers.deleted, 1)
	assert.Equal(t, reservationID, numbers.deleted[0])
	assert.Empty(t, history.entries)
}

func TestAssignNumberRejectsAlreadyNumbered(t *testing.T) {
	letter, numberer := signedAtNumbering()
	letter.Number = &model.LetterNumber{Number: "001/E-OFF/PKL/I/2026"}
	letters := singleLetterRepo(letter)

	svc := newNumberingService(letters, &mockNumberRepo{}, nil, nil, nil)
	_, err := svc.AssignNumber(context.Background(), letter.ID.String(), numberer.String(), AssignNumberRequest{})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestFormatLetterNumber(t *testing.T) {
	date := time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "012/E-OFF/PKL/VIII/2026", formatLetterNumber(12, "PKL", date))
	assert.Equal(t, "001/E-OFF/MAGANG/I/2027", formatLetterNumber(1, "MAGANG", time.Date(2027, time.January, 2, 0, 0, 0, 0, time.UTC)))
}
