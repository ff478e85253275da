package mongo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/garnizeh/assessboard/internal/assessment"
	"github.com/garnizeh/assessboard/internal/models"
	"github.com/garnizeh/assessboard/internal/repository"
)

// Collection names.
const (
	EmployeesCollection = "employees"
	UsersCollection     = "users"
)

// Repo implements the Record Store on MongoDB. Updates are read-modify-write
// without a transaction so a standalone server is enough.
type Repo struct {
	employees *mongo.Collection
	users     *mongo.Collection
	logger    *slog.Logger
	clock     func() time.Time
}

var _ repository.EmployeeRepo = (*Repo)(nil)
var _ repository.UserRepo = (*Repo)(nil)

func New(db *mongo.Database, logger *slog.Logger) *Repo {
	return newRepo(db.Collection(EmployeesCollection), db.Collection(UsersCollection), logger)
}

func newRepo(employees, users *mongo.Collection, logger *slog.Logger) *Repo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Repo{employees: employees, users: users, logger: logger, clock: time.Now}
}

// Connect dials uri and pings the primary.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique email indexes and the creation-order index.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	employeeIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		{Keys: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("created_at")},
	}
	if _, err := r.employees.Indexes().CreateMany(ctx, employeeIndexes); err != nil {
		return fmt.Errorf("mongo: employee indexes: %w", err)
	}
	if _, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_email"),
	}); err != nil {
		return fmt.Errorf("mongo: user indexes: %w", err)
	}
	return nil
}

// WithClock replaces the time source used for audit timestamps.
func (r *Repo) WithClock(clock func() time.Time) *Repo {
	r.clock = clock
	return r
}

// now is truncated to BSON datetime precision.
func (r *Repo) now() time.Time {
	return r.clock().UTC().Truncate(time.Millisecond)
}

func translateMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicateEmail
	}
	return err
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, repository.ErrNotFound
	}
	return oid, nil
}

func (r *Repo) CreateEmployee(ctx context.Context, e *models.Employee) (*models.Employee, error) {
	if e == nil {
		return nil, fmt.Errorf("employee is nil")
	}

	rec := *e
	rec.CreatedAt = r.now()
	rec.UpdatedAt = rec.CreatedAt
	rec.StampSubmission(rec.CreatedAt)

	doc := toEmployeeDocument(primitive.NewObjectID(), &rec)
	if _, err := r.employees.InsertOne(ctx, doc); err != nil {
		return nil, translateMongoError(err)
	}

	out := doc.toEmployee()
	r.logger.Debug("mongo: employee created", slog.String("id", out.ID))
	return &out, nil
}

func (r *Repo) UpdateEmployee(ctx context.Context, id string, p assessment.Patch) (*models.Employee, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc employeeDocument
	if err := r.employees.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}

	rec := doc.toEmployee()
	rec.Apply(p)
	rec.UpdatedAt = r.now()
	rec.StampSubmission(rec.UpdatedAt)

	next := toEmployeeDocument(oid, &rec)
	res, err := r.employees.ReplaceOne(ctx, bson.M{"_id": oid}, next)
	if err != nil {
		return nil, translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return nil, repository.ErrNotFound
	}

	out := next.toEmployee()
	return &out, nil
}

func (r *Repo) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc employeeDocument
	if err := r.employees.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	out := doc.toEmployee()
	return &out, nil
}

func (r *Repo) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.employees.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list employees: %w", err)
	}
	defer cursor.Close(ctx)

	out := make([]models.Employee, 0)
	for cursor.Next(ctx) {
		var doc employeeDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toEmployee())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	if u == nil {
		return nil, fmt.Errorf("user is nil")
	}
	role := u.Role
	if role == "" {
		role = models.RoleEmployee
	}
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         role,
		CreatedAt:    r.now(),
	}
	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		return nil, translateMongoError(err)
	}
	out := doc.toUser()
	return &out, nil
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDocument
	if err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	out := doc.toUser()
	return &out, nil
}
