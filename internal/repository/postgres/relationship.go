package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
)

type relationshipRepository struct {
	BaseRepository
}

func NewRelationshipRepository(base BaseRepository) repository.RelationshipRepository {
	return &relationshipRepository{base}
}

const relationshipColumns = `relationship_id, user_id, related_user_id, relation, permission, created_at`

func (r *relationshipRepository) Create(ctx context.Context, rel *model.Relationship) error {
	rel.ID = uuid.New()
	rel.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_relationships (
			relationship_id, user_id, related_user_id, relation, permission, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		rel.ID, rel.UserID, rel.RelatedUserID, rel.Relation, rel.Permission, rel.CreatedAt,
	)
	return translate(err, "Relationship", "create")
}

func (r *relationshipRepository) Get(ctx context.Context, id uuid.UUID) (*model.Relationship, error) {
	var rel model.Relationship
	err := r.db.GetContext(ctx, &rel,
		`SELECT `+relationshipColumns+` FROM user_relationships WHERE relationship_id = $1`, id)
	if err != nil {
		return nil, translate(err, "Relationship", "get")
	}
	return &rel, nil
}

func (r *relationshipRepository) FindEdge(ctx context.Context, userID, relatedUserID uuid.UUID) (*model.Relationship, error) {
	var rel model.Relationship
	err := r.db.GetContext(ctx, &rel, `
		SELECT `+relationshipColumns+`
		FROM user_relationships
		WHERE user_id = $1 AND related_user_id = $2`, userID, relatedUserID)
	if err != nil {
		return nil, translate(err, "Relationship", "get")
	}
	return &rel, nil
}

// ListByUser returns the caller's outgoing edges with the related profile loaded.
func (r *relationshipRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Relationship, error) {
	rels := []*model.Relationship{}
	err := r.db.SelectContext(ctx, &rels, `
		SELECT r.relationship_id, r.user_id, r.related_user_id, r.relation, r.permission, r.created_at,
			p.id AS "related_user.id",
			p.name AS "related_user.name",
			p.phone AS "related_user.phone",
			p.gender AS "related_user.gender",
			p.date_of_birth AS "related_user.date_of_birth",
			p.updated_at AS "related_user.updated_at"
		FROM user_relationships r
		JOIN profiles p ON p.id = r.related_user_id
		WHERE r.user_id = $1
		ORDER BY r.created_at`, userID)
	if err != nil {
		return nil, translate(err, "Relationship", "list")
	}
	return rels, nil
}

func (r *relationshipRepository) Update(ctx context.Context, rel *model.Relationship) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE user_relationships SET relation = $1, permission = $2 WHERE relationship_id = $3`,
		rel.Relation, rel.Permission, rel.ID,
	)
	if err != nil {
		return translate(err, "Relationship", "update")
	}
	return expectOne(res, "Relationship")
}

func (r *relationshipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_relationships WHERE relationship_id = $1`, id)
	if err != nil {
		return translate(err, "Relationship", "delete")
	}
	return expectOne(res, "Relationship")
}
