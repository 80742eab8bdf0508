package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocumentService(letters *mockLetterRepo, versions *mockVersionRepo, history *mockHistoryRepo) DocumentService {
	if versions == nil {
		versions = &mockVersionRepo{}
	}
	if history == nil {
		history = &mockHistoryRepo{}
	}
	return NewDocumentService(letters, versions, history, &mockRenderer{}, &mockBlobStorage{}, mockTx{}, testLogger())
}

func TestPublishVersionByAcademicSupervisor(t *testing.T) {
	// The letter waits at step 3; publication is still the dosen PA's call.
	letter, byStep := processingLetter(model.StepProgramHead)
	letters := singleLetterRepo(letter)
	versions := &mockVersionRepo{}
	history := &mockHistoryRepo{}

	svc := newDocumentService(letters, versions, history)
	resp, err := svc.PublishVersion(context.Background(), letter.ID.String(), byStep[model.StepAcademicSupervisor].String(), PublishVersionRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Version)
	assert.Equal(t, model.FormatHTML, resp.Format)
	assert.True(t, resp.IsEditable)
	assert.Equal(t, model.VersionReasonDraft, resp.Reason)

	assert.Equal(t, model.StepProgramHead, letter.Step(), "publication never moves the workflow")
	assert.Equal(t, 1, letter.LatestEditableVersion)

	require.Len(t, history.entries, 1)
	entry := history.entries[0]
	assert.Equal(t, model.ActionDocumentPublished, entry.Action)
	assert.Equal(t, int(model.StepProgramHead), *entry.FromStep)
	assert.Equal(t, int(model.StepProgramHead), *entry.ToStep)
}

func TestPublishVersionNumbersMonotonically(t *testing.T) {
	letter, byStep := processingLetter(model.StepAcademicSupervisor)
	letters := singleLetterRepo(letter)
	versions := &mockVersionRepo{}
	caller := byStep[model.StepAcademicSupervisor].String()

	svc := newDocumentService(letters, versions, nil)
	for want := 1; want <= 3; want++ {
		resp, err := svc.PublishVersion(context.Background(), letter.ID.String(), caller, PublishVersionRequest{Reason: "draft"})
		require.NoError(t, err)
		assert.Equal(t, want, resp.Version)
	}
	assert.Equal(t, 3, letter.LatestEditableVersion)
}

func TestPublishVersionRejectsOtherCallers(t *testing.T) {
	letter, byStep := processingLetter(model.StepAcademicSupervisor)
	letters := singleLetterRepo(letter)

	svc := newDocumentService(letters, nil, nil)
	_, err := svc.PublishVersion(context.Background(), letter.ID.String(), byStep[model.StepViceDean].String(), PublishVersionRequest{})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestPublishVersionRejectsTerminalLetter(t *testing.T) {
	letter, byStep := processingLetter(model.StepAcademicSupervisor)
	letter.Status = model.LetterCompleted
	letter.CurrentStep = nil
	letters := singleLetterRepo(letter)

	svc := newDocumentService(letters, nil, nil)
	_, err := svc.PublishVersion(context.Background(), letter.ID.String(), byStep[model.StepAcademicSupervisor].String(), PublishVersionRequest{})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestListVersionsReturnsChain(t *testing.T) {
	letter, _ := processingLetter(model.StepAcademicSupervisor)
	letters := singleLetterRepo(letter)
	versions := &mockVersionRepo{
		versions: []model.LetterDocumentVersion{
			{ID: uuid.New(), LetterID: letter.ID, Version: 1, Format: model.FormatHTML, IsEditable: true},
			{ID: uuid.New(), LetterID: letter.ID, Version: 2, Format: model.FormatPDF, IsPDF: true},
		},
	}

	svc := newDocumentService(letters, versions, nil)
	out, err := svc.ListVersions(context.Background(), letter.ID.String())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].Version)
	assert.Equal(t, 2, out[1].Version)
}

func TestDownloadVersionPicksMimeByFormat(t *testing.T) {
	letter, _ := processingLetter(model.StepAcademicSupervisor)
	letters := singleLetterRepo(letter)
	versions := &mockVersionRepo{
		versions: []model.LetterDocumentVersion{
			{ID: uuid.New(), LetterID: letter.ID, Version: 1, StorageKey: "letters/a/v1.html", Format: model.FormatHTML},
			{ID: uuid.New(), LetterID: letter.ID, Version: 2, StorageKey: "letters/a/v2.pdf", Format: model.FormatPDF, IsPDF: true},
		},
	}

	svc := newDocumentService(letters, versions, nil)

	html, err := svc.DownloadVersion(context.Background(), letter.ID.String(), 1)
	require.NoError(t, err)
	assert.Equal(t, "text/html", html.MimeType)

	pdf, err := svc.DownloadVersion(context.Background(), letter.ID.String(), 2)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.MimeType)

	_, err = svc.DownloadVersion(context.Background(), letter.ID.String(), 9)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
