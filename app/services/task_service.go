package services

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"social-todo/app/models"
)

const taskFields = "t.id AS id, o.id AS owner_id, t.name AS name, t.description AS description, " +
	"t.is_complete AS is_complete, t.collaborators AS collaborators, t.created_at AS created_at"

// TaskService stores tasks as (:Task) nodes linked to their owner by OWNS.
type TaskService struct {
	neo4jStore
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(driver neo4j.DriverWithContext, database string) *TaskService {
	return &TaskService{neo4jStore{driver: driver, database: database}}
}

// Create adds a new task to the database under its owner.
func (s *TaskService) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if err := prepareTask(task); err != nil {
		return nil, err
	}

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	created, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (o:User {id: $owner_id}) "+
				"CREATE (o)-[:OWNS]->(t:Task {id: $id, name: $name, description: $description, "+
				"is_complete: $is_complete, collaborators: $collaborators, created_at: $created_at}) "+
				"RETURN t.id AS id",
			map[string]any{
				"owner_id":      task.OwnerID,
				"id":            task.ID,
				"name":          task.Name,
				"description":   task.Description,
				"is_complete":   task.IsComplete,
				"collaborators": append([]string{}, task.Collaborators...),
				"created_at":    task.CreatedAt.UnixMilli(),
			},
		)
		if err != nil {
			return nil, err
		}
		return res.Next(ctx), res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	if ok, _ := created.(bool); !ok {
		return nil, fmt.Errorf("create task: owner %s: %w", task.OwnerID, ErrNotFound)
	}
	return task, nil
}

// FindByID retrieves a single task by its ID.
func (s *TaskService) FindByID(ctx context.Context, id string) (*models.Task, error) {
	tasks, err := s.query(ctx,
		"MATCH (o:User)-[:OWNS]->(t:Task {id: $id}) RETURN "+taskFields,
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, ErrNotFound
	}
	return &tasks[0], nil
}

// FindVisible retrieves the tasks u owns or is listed on as a collaborator.
func (s *TaskService) FindVisible(ctx context.Context, u *models.User) ([]models.Task, error) {
	return s.query(ctx,
		"MATCH (o:User)-[:OWNS]->(t:Task) "+
			"WHERE o.id = $user_id OR $email IN t.collaborators "+
			"RETURN "+taskFields+" ORDER BY t.created_at",
		map[string]any{"user_id": u.ID, "email": u.Email},
	)
}

// SetComplete updates only the completion flag of a task.
func (s *TaskService) SetComplete(ctx context.Context, id string, complete bool) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	matched, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task {id: $id}) SET t.is_complete = $complete RETURN t.id AS id",
			map[string]any{"id": id, "complete": complete},
		)
		if err != nil {
			return nil, err
		}
		return res.Next(ctx), res.Err()
	})
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if ok, _ := matched.(bool); !ok {
		return ErrNotFound
	}
	return nil
}

// Delete removes a task and its relationships. Deleting a missing task is not an error.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (t:Task {id: $id}) DETACH DELETE t",
			map[string]any{"id": id},
		)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *TaskService) query(ctx context.Context, cypher string, params map[string]any) ([]models.Task, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}

		var tasks []models.Task
		for res.Next(ctx) {
			rec := res.Record()
			tasks = append(tasks, models.Task{
				ID:            recordString(rec, "id"),
				OwnerID:       recordString(rec, "owner_id"),
				Name:          recordString(rec, "name"),
				Description:   recordString(rec, "description"),
				IsComplete:    recordBool(rec, "is_complete"),
				Collaborators: recordStrings(rec, "collaborators"),
				CreatedAt:     recordTime(rec, "created_at"),
			})
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return tasks, nil
	})
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	tasks, _ := result.([]models.Task)
	return tasks, nil
}
