package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/primeshop/account-service/internal/core/domain"
	"github.com/primeshop/account-service/internal/core/ports"
)

const (
	userCollection = "users"
	roleCollection = "roles"
)

// MongoUserRepository is the credential store: users plus role definitions.
// Password hashing happens here; the core never sees a hash being derived.
type MongoUserRepository struct {
	users *mongo.Collection
	roles *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		users: db.Collection(userCollection),
		roles: db.Collection(roleCollection),
	}
}

type userDoc struct {
	ID             string   `bson:"_id"`
	Username       string   `bson:"username"`
	Email          string   `bson:"email"`
	PasswordHash   string   `bson:"password_hash"`
	FullName       string   `bson:"full_name,omitempty"`
	Phone          string   `bson:"phone,omitempty"`
	AccountType    string   `bson:"account_type,omitempty"`
	Promotion      int64    `bson:"promotion"`
	LockoutEnabled bool     `bson:"lockout_enabled"`
	Roles          []string `bson:"roles,omitempty"`
	CreatedAt      int64    `bson:"created_at"`
	UpdatedAt      int64    `bson:"updated_at"`
}

func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDoc
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return docToUser(&doc), nil
}

// Create derives the bcrypt hash and inserts the user. Uniqueness is enforced
// by the indexes created in EnsureIndexes, so a racing duplicate surfaces as
// ErrDuplicateIdentity no matter which caller loses.
func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	if strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("password is required: %w", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	doc := userDoc{
		ID:             uuid.NewString(),
		Username:       user.Username,
		Email:          user.Email,
		PasswordHash:   string(hash),
		FullName:       user.FullName,
		Phone:          user.Phone,
		AccountType:    user.AccountType,
		Promotion:      user.Promotion,
		LockoutEnabled: user.LockoutEnabled,
		CreatedAt:      now.Unix(),
		UpdatedAt:      now.Unix(),
	}

	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return docToUser(&doc), nil
}

func (r *MongoUserRepository) CheckPassword(user *domain.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

func (r *MongoUserRepository) GetRoles(ctx context.Context, user *domain.User) ([]string, error) {
	found, err := r.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return found.Roles, nil
}

// AddToRole attaches the role tag via $addToSet, so repeated assignment is a no-op.
func (r *MongoUserRepository) AddToRole(ctx context.Context, user *domain.User, role string) error {
	res, err := r.users.UpdateByID(ctx, user.ID, bson.M{
		"$addToSet": bson.M{"roles": role},
		"$set":      bson.M{"updated_at": time.Now().UTC().Unix()},
	})
	if err != nil {
		return fmt.Errorf("add to role: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *MongoUserRepository) RoleExists(ctx context.Context, name string) (bool, error) {
	n, err := r.roles.CountDocuments(ctx, bson.M{"_id": name})
	if err != nil {
		return false, fmt.Errorf("role exists: %w", err)
	}
	return n > 0, nil
}

// EnsureRole upserts the role definition. Concurrent first use of the same
// role resolves to a single document instead of a duplicate-key error.
func (r *MongoUserRepository) EnsureRole(ctx context.Context, name string) error {
	_, err := r.roles.UpdateByID(ctx, name,
		bson.M{"$setOnInsert": bson.M{"created_at": time.Now().UTC().Unix()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("ensure role: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) List(ctx context.Context, page, pageSize int) ([]domain.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cur, err := r.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return r.drain(ctx, cur)
}

// Search matches the query as a case-insensitive substring of username, email,
// or full name.
func (r *MongoUserRepository) Search(ctx context.Context, query string) ([]domain.User, error) {
	re := primitive.Regex{Pattern: regexEscape(query), Options: "i"}
	cur, err := r.users.Find(ctx, bson.M{"$or": bson.A{
		bson.M{"username": re},
		bson.M{"email": re},
		bson.M{"full_name": re},
	}})
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return r.drain(ctx, cur)
}

func (r *MongoUserRepository) Update(ctx context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	set := bson.M{"updated_at": time.Now().UTC().Unix()}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.FullName != nil {
		set["full_name"] = *upd.FullName
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}

	var doc userDoc
	err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return docToUser(&doc), nil
}

func (r *MongoUserRepository) SetLockout(ctx context.Context, id string, enabled bool) error {
	res, err := r.users.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"lockout_enabled": enabled,
		"updated_at":      time.Now().UTC().Unix(),
	}})
	if err != nil {
		return fmt.Errorf("set lockout: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *MongoUserRepository) SetPassword(ctx context.Context, id, password string) error {
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password is required: %w", domain.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	res, err := r.users.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": string(hash),
		"updated_at":    time.Now().UTC().Unix(),
	}})
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *MongoUserRepository) drain(ctx context.Context, cur *mongo.Cursor) ([]domain.User, error) {
	defer cur.Close(ctx)

	var users []domain.User
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, *docToUser(&doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func docToUser(doc *userDoc) *domain.User {
	return &domain.User{
		ID:             doc.ID,
		Username:       doc.Username,
		Email:          doc.Email,
		PasswordHash:   doc.PasswordHash,
		FullName:       doc.FullName,
		Phone:          doc.Phone,
		AccountType:    doc.AccountType,
		Promotion:      doc.Promotion,
		LockoutEnabled: doc.LockoutEnabled,
		Roles:          doc.Roles,
		CreatedAt:      unixToTime(doc.CreatedAt),
		UpdatedAt:      unixToTime(doc.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

// regexEscape neutralises regex metacharacters in user-supplied search input.
func regexEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
