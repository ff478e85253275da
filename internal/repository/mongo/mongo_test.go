package mongo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/models"
	"github.com/garnizeh/assessboard/internal/repository"
)

func TestTranslateMongoError(t *testing.T) {
	t.Parallel()

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "nil", in: nil, want: nil},
		{name: "no documents", in: mongo.ErrNoDocuments, want: repository.ErrNotFound},
		{name: "wrapped no documents", in: fmt.Errorf("find: %w", mongo.ErrNoDocuments), want: repository.ErrNotFound},
		{name: "duplicate key", in: dup, want: repository.ErrDuplicateEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translateMongoError(tt.in); !errors.Is(got, tt.want) && got != tt.want {
				t.Fatalf("translateMongoError(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	other := errors.New("boom")
	if translateMongoError(other) != other {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestEmployeeDocument_RoundTrip(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	e := models.Employee{
		Name:                "Alice",
		Email:               "a@x.com",
		Role:                "Eng",
		AssessmentSubmitted: true,
		Tags:                []string{"go"},
		LearningScore:       4.5,
		SubmissionDate:      &created,
		CreatedAt:           created,
		UpdatedAt:           created,
	}
	e.AssessmentAnswers[2] = "three"

	oid := primitive.NewObjectID()
	doc := toEmployeeDocument(oid, &e)
	if len(doc.AssessmentAnswers) != assessment.NumQuestions || doc.AssessmentAnswers["q3"] != "three" {
		t.Fatalf("answers not keyed: %v", doc.AssessmentAnswers)
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("bson.Marshal: %v", err)
	}
	var decoded employeeDocument
	if err := bson.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("bson.Unmarshal: %v", err)
	}

	got := decoded.toEmployee()
	if got.ID != oid.Hex() || got.Name != "Alice" || got.AssessmentAnswers[2] != "three" || got.Tags[0] != "go" {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.SubmissionDate == nil || !got.SubmissionDate.Equal(created) || !got.CreatedAt.Equal(created) {
		t.Fatalf("timestamps not preserved: %+v", got)
	}
}

func TestEmployeeDocument_NilTagsAndUnknownKeys(t *testing.T) {
	t.Parallel()

	doc := employeeDocument{
		ID:                primitive.NewObjectID(),
		AssessmentAnswers: map[string]string{"q1": "a", "legacy": "ignored"},
	}
	got := doc.toEmployee()
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Fatalf("tags must be an empty list, got %#v", got.Tags)
	}
	if got.AssessmentAnswers[0] != "a" {
		t.Fatalf("known answer lost: %v", got.AssessmentAnswers)
	}
}

func TestRepo_MalformedIDIsNotFound(t *testing.T) {
	t.Parallel()

	r := newRepo(nil, nil, nil)
	if _, err := r.GetEmployee(context.Background(), "zzz"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	name := "x"
	if _, err := r.UpdateEmployee(context.Background(), "zzz", assessment.Patch{Name: &name}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.CreateEmployee(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil employee")
	}
}
