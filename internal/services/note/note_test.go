package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/interview-api/internal/models"
)

type NoteRepoMock struct {
	mock.Mock
}

func (m *NoteRepoMock) CreateNote(ctx context.Context, note models.Note) (models.Note, error) {
	args := m.Called(ctx, note)
	created, _ := args.Get(0).(models.Note)
	return created, args.Error(1)
}

func (m *NoteRepoMock) ListNotesByUser(ctx context.Context, userID string) ([]models.Note, error) {
	args := m.Called(ctx, userID)
	notes, _ := args.Get(0).([]models.Note)
	return notes, args.Error(1)
}

func TestNoteService_Create(t *testing.T) {
	repo := new(NoteRepoMock)
	service := NewNoteService(repo)

	repo.On("CreateNote", mock.Anything, mock.MatchedBy(func(n models.Note) bool {
		return n.UserID == "u1" && n.LessonID == "l1" && n.Note == "hi" && !n.CreatedAt.IsZero()
	})).Return(models.Note{UID: "n1", UserID: "u1", LessonID: "l1", Note: "hi"}, nil).Once()

	created, err := service.Create(context.Background(), "u1", "l1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "n1", created.UID)
	repo.AssertExpectations(t)
}

func TestNoteService_CreateBulk(t *testing.T) {
	repo := new(NoteRepoMock)
	service := NewNoteService(repo)

	repo.On("CreateNote", mock.Anything, mock.MatchedBy(func(n models.Note) bool {
		return n.UserID == "u1" && n.LessonID == "l1" && n.Note == "hi"
	})).Return(models.Note{UID: "n1"}, nil).Once()
	repo.On("CreateNote", mock.Anything, mock.MatchedBy(func(n models.Note) bool {
		return n.UserID == "u1" && n.LessonID == "l2" && n.Note == "yo"
	})).Return(models.Note{UID: "n2"}, nil).Once()

	err := service.CreateBulk(context.Background(), "u1", []BulkNote{
		{LessonID: "l1", Content: "hi"},
		{LessonID: "l2", Content: "yo"},
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestNoteService_CreateBulk_StopsOnError(t *testing.T) {
	repo := new(NoteRepoMock)
	service := NewNoteService(repo)

	repo.On("CreateNote", mock.Anything, mock.Anything).
		Return(models.Note{}, errors.New("io failure")).Once()

	err := service.CreateBulk(context.Background(), "u1", []BulkNote{
		{LessonID: "l1", Content: "hi"},
		{LessonID: "l2", Content: "yo"},
	})
	assert.Error(t, err)
	repo.AssertNumberOfCalls(t, "CreateNote", 1)
}

func TestNoteService_ListByUser(t *testing.T) {
	repo := new(NoteRepoMock)
	service := NewNoteService(repo)

	repo.On("ListNotesByUser", mock.Anything, "u1").
		Return([]models.Note{{UID: "n1"}, {UID: "n2"}}, nil).Once()

	notes, err := service.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, notes, 2)
}
