package services

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"social-todo/app/models"
)

// SessionService stores login sessions as (:Session) nodes in the same database as users and tasks.
type SessionService struct {
	neo4jStore
}

// NewSessionService creates a new instance of SessionService.
func NewSessionService(driver neo4j.DriverWithContext, database string) *SessionService {
	return &SessionService{neo4jStore{driver: driver, database: database}}
}

// Create starts a session for userID that expires after ttl.
func (s *SessionService) Create(ctx context.Context, userID string, ttl time.Duration) (*models.Session, error) {
	sess := newSession(userID, ttl)

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"CREATE (s:Session {token: $token, user_id: $user_id, created_at: $created_at, expires_at: $expires_at})",
			map[string]any{
				"token":      sess.Token,
				"user_id":    sess.UserID,
				"created_at": sess.CreatedAt.UnixMilli(),
				"expires_at": sess.ExpiresAt.UnixMilli(),
			},
		)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Get retrieves a live session by token.
func (s *SessionService) Get(ctx context.Context, token string) (*models.Session, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (s:Session {token: $token}) WHERE s.expires_at > $now "+
				"RETURN s.token AS token, s.user_id AS user_id, s.created_at AS created_at, s.expires_at AS expires_at",
			map[string]any{"token": token, "now": time.Now().UnixMilli()},
		)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			return nil, res.Err()
		}
		rec := res.Record()
		return &models.Session{
			Token:     recordString(rec, "token"),
			UserID:    recordString(rec, "user_id"),
			CreatedAt: recordTime(rec, "created_at"),
			ExpiresAt: recordTime(rec, "expires_at"),
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	sess, _ := result.(*models.Session)
	if sess == nil {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Destroy deletes the session. Unknown tokens are ignored.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (s:Session {token: $token}) DELETE s", map[string]any{"token": token})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every session that expired at or before now.
func (s *SessionService) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	removed, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (s:Session) WHERE s.expires_at <= $now DELETE s",
			map[string]any{"now": now.UnixMilli()},
		)
		if err != nil {
			return nil, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return nil, err
		}
		return summary.Counters().NodesDeleted(), nil
	})
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, _ := removed.(int)
	return n, nil
}
