package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/models"
)

// employeeDocument is the stored shape of an employee record.
type employeeDocument struct {
	ID                  primitive.ObjectID `bson:"_id"`
	Name                string             `bson:"name"`
	Email               string             `bson:"email"`
	Role                string             `bson:"role"`
	AssessmentSubmitted bool               `bson:"assessment_submitted"`
	AssessmentAnswers   map[string]string  `bson:"assessment_answers"`
	Tags                []string           `bson:"tags"`
	Culture             string             `bson:"culture"`
	Learning            string             `bson:"learning"`
	Interest            string             `bson:"interest"`
	Goals               string             `bson:"goals"`
	SubmissionDate      *time.Time         `bson:"submission_date,omitempty"`
	LearningScore       float64            `bson:"learning_score"`
	CreatedAt           time.Time          `bson:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at"`
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func toEmployeeDocument(id primitive.ObjectID, e *models.Employee) employeeDocument {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return employeeDocument{
		ID:                  id,
		Name:                e.Name,
		Email:               e.Email,
		Role:                e.Role,
		AssessmentSubmitted: e.AssessmentSubmitted,
		AssessmentAnswers:   e.AssessmentAnswers.Map(),
		Tags:                tags,
		Culture:             e.Culture,
		Learning:            e.Learning,
		Interest:            e.Interest,
		Goals:               e.Goals,
		SubmissionDate:      e.SubmissionDate,
		LearningScore:       e.LearningScore,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
}

// toEmployee maps a stored document back to a record. Unknown answer keys
// are ignored.
func (d employeeDocument) toEmployee() models.Employee {
	var answers assessment.Answers
	for k, v := range d.AssessmentAnswers {
		_ = answers.Set(k, v)
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	var submitted *time.Time
	if d.SubmissionDate != nil {
		t := d.SubmissionDate.UTC()
		submitted = &t
	}
	return models.Employee{
		ID:                  d.ID.Hex(),
		Name:                d.Name,
		Email:               d.Email,
		Role:                d.Role,
		AssessmentSubmitted: d.AssessmentSubmitted,
		AssessmentAnswers:   answers,
		Tags:                tags,
		Culture:             d.Culture,
		Learning:            d.Learning,
		Interest:            d.Interest,
		Goals:               d.Goals,
		SubmissionDate:      submitted,
		LearningScore:       d.LearningScore,
		CreatedAt:           d.CreatedAt.UTC(),
		UpdatedAt:           d.UpdatedAt.UTC(),
	}
}

func (d userDocument) toUser() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}
