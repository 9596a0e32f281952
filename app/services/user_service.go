package services

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"social-todo/app/models"
)

const userFields = "u.id AS id, u.email AS email, u.name AS name, " +
	"u.hashed_password AS hashed_password, u.created_at AS created_at"

// UserService stores users as (:User) nodes.
type UserService struct {
	neo4jStore
}

// NewUserService creates a new instance of UserService.
func NewUserService(driver neo4j.DriverWithContext, database string) *UserService {
	return &UserService{neo4jStore{driver: driver, database: database}}
}

// Create hashes the password and adds the user to the database.
func (s *UserService) Create(ctx context.Context, u *models.User, password string) error {
	if err := prepareUser(u, password); err != nil {
		return err
	}

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"CREATE (u:User {id: $id, email: $email, name: $name, "+
				"hashed_password: $hashed_password, created_at: $created_at})",
			map[string]any{
				"id":              u.ID,
				"email":           u.Email,
				"name":            u.Name,
				"hashed_password": u.HashedPassword,
				"created_at":      u.CreatedAt.UnixMilli(),
			},
		)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByID retrieves a single user by its ID.
func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, "MATCH (u:User {id: $value}) RETURN "+userFields, id)
}

// FindByEmail retrieves a single user by email address.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, "MATCH (u:User {email: $value}) RETURN "+userFields, email)
}

func (s *UserService) findOne(ctx context.Context, query, value string) (*models.User, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"value": value})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			return nil, res.Err()
		}
		rec := res.Record()
		return &models.User{
			ID:             recordString(rec, "id"),
			Email:          recordString(rec, "email"),
			Name:           recordString(rec, "name"),
			HashedPassword: recordString(rec, "hashed_password"),
			CreatedAt:      recordTime(rec, "created_at"),
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	user, _ := result.(*models.User)
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}
