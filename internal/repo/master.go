package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tourdesk/tourdesk/internal/domain"
)

// MasterRepo defines the persistence operations shared by every master-data
// kind. All kinds live in one table keyed by (kind, id); every method is
// scoped to a kind so an id of one kind is never visible through another.
type MasterRepo interface {
	// Create inserts a new entity and returns the persisted record.
	Create(ctx context.Context, e domain.MasterEntity) (domain.MasterEntity, error)

	// GetByID retrieves one entity. Returns domain.ErrNotFound if no entity of
	// that kind has the id.
	GetByID(ctx context.Context, kind domain.Kind, id uuid.UUID) (domain.MasterEntity, error)

	// List returns one page of entities of kind matching filter, ordered by
	// name, plus the total number of matches. filter.Query must already be
	// normalized; it is matched as a prefix of any search keyword.
	List(ctx context.Context, kind domain.Kind, filter domain.MasterFilter, p domain.PaginationParams) ([]domain.MasterEntity, int64, error)

	// ListAll returns every entity of kind ordered by name, or only the active
	// ones when onlyActive is set.
	ListAll(ctx context.Context, kind domain.Kind, onlyActive bool) ([]domain.MasterEntity, error)

	// Update overwrites name, code, status, keywords and attributes.
	// Returns domain.ErrNotFound if the entity does not exist.
	Update(ctx context.Context, e domain.MasterEntity) (domain.MasterEntity, error)

	// SetStatus toggles the soft-delete flag and returns the updated record.
	SetStatus(ctx context.Context, kind domain.Kind, id uuid.UUID, status domain.Status) (domain.MasterEntity, error)

	// Delete removes an entity permanently. Tours keep their reference
	// snapshots; nothing cascades.
	Delete(ctx context.Context, kind domain.Kind, id uuid.UUID) error
}

// pgMasterRepo is the Postgres implementation of MasterRepo.
type pgMasterRepo struct {
	db db
}

// NewMasterRepo constructs a MasterRepo backed by the provided db connection.
func NewMasterRepo(db db) MasterRepo {
	return &pgMasterRepo{db: db}
}

const masterColumns = `id, kind, name, code, status, search_keywords, attributes, created_at, updated_at`

func masterArgs(e domain.MasterEntity) pgx.NamedArgs {
	keywords := e.SearchKeywords
	if keywords == nil {
		keywords = []string{}
	}
	attrs := e.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	return pgx.NamedArgs{
		"id":              e.ID,
		"kind":            string(e.Kind),
		"name":            e.Name,
		"code":            e.Code,
		"status":          string(e.Status),
		"search_keywords": keywords,
		"attributes":      attrs,
	}
}

// Create inserts a new entity row and returns the full persisted record.
func (r *pgMasterRepo) Create(ctx context.Context, e domain.MasterEntity) (domain.MasterEntity, error) {
	q := `
		INSERT INTO master_entities (kind, name, code, status, search_keywords, attributes)
		VALUES (@kind, @name, @code, @status, @search_keywords, @attributes)
		RETURNING ` + masterColumns

	result, err := scanMaster(r.db.QueryRow(ctx, q, masterArgs(e)))
	if err != nil {
		return domain.MasterEntity{}, fmt.Errorf("repo.MasterRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves an entity by kind and primary key.
func (r *pgMasterRepo) GetByID(ctx context.Context, kind domain.Kind, id uuid.UUID) (domain.MasterEntity, error) {
	q := `SELECT ` + masterColumns + ` FROM master_entities WHERE kind = @kind AND id = @id`

	result, err := scanMaster(r.db.QueryRow(ctx, q, pgx.NamedArgs{"kind": string(kind), "id": id}))
	if err != nil {
		return domain.MasterEntity{}, fmt.Errorf("repo.MasterRepo.GetByID: %w", err)
	}
	return result, nil
}

const masterFilter = `
	kind = @kind
	AND (@status::text = '' OR status = @status::text)
	AND (@q::text = '' OR EXISTS (SELECT 1 FROM unnest(search_keywords) AS k WHERE starts_with(k, @q::text)))`

// List returns one page of matching entities ordered by name.
func (r *pgMasterRepo) List(ctx context.Context, kind domain.Kind, filter domain.MasterFilter, p domain.PaginationParams) ([]domain.MasterEntity, int64, error) {
	args := pgx.NamedArgs{
		"kind":   string(kind),
		"status": string(filter.Status),
		"q":      filter.Query,
		"limit":  p.Limit,
		"offset": p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM master_entities WHERE `+masterFilter, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.MasterRepo.List: count: %w", err)
	}

	q := `SELECT ` + masterColumns + ` FROM master_entities WHERE ` + masterFilter + `
		ORDER BY name, created_at
		LIMIT @limit OFFSET @offset`
	entities, err := r.query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.MasterRepo.List: %w", err)
	}
	return entities, total, nil
}

// ListAll returns every entity of kind ordered by name, then creation time so
// that duplicate names keep a stable first-seen order.
func (r *pgMasterRepo) ListAll(ctx context.Context, kind domain.Kind, onlyActive bool) ([]domain.MasterEntity, error) {
	q := `SELECT ` + masterColumns + ` FROM master_entities
		WHERE kind = @kind AND (NOT @only_active::boolean OR status = 'active')
		ORDER BY name, created_at`

	entities, err := r.query(ctx, q, pgx.NamedArgs{"kind": string(kind), "only_active": onlyActive})
	if err != nil {
		return nil, fmt.Errorf("repo.MasterRepo.ListAll: %w", err)
	}
	return entities, nil
}

// Update overwrites the mutable fields of an entity.
func (r *pgMasterRepo) Update(ctx context.Context, e domain.MasterEntity) (domain.MasterEntity, error) {
	q := `
		UPDATE master_entities
		SET name            = @name,
		    code            = @code,
		    status          = @status,
		    search_keywords = @search_keywords,
		    attributes      = @attributes,
		    updated_at      = now()
		WHERE kind = @kind AND id = @id
		RETURNING ` + masterColumns

	result, err := scanMaster(r.db.QueryRow(ctx, q, masterArgs(e)))
	if err != nil {
		return domain.MasterEntity{}, fmt.Errorf("repo.MasterRepo.Update: %w", err)
	}
	return result, nil
}

// SetStatus changes only the status column.
func (r *pgMasterRepo) SetStatus(ctx context.Context, kind domain.Kind, id uuid.UUID, status domain.Status) (domain.MasterEntity, error) {
	q := `
		UPDATE master_entities
		SET status = @status, updated_at = now()
		WHERE kind = @kind AND id = @id
		RETURNING ` + masterColumns

	result, err := scanMaster(r.db.QueryRow(ctx, q, pgx.NamedArgs{"kind": string(kind), "id": id, "status": string(status)}))
	if err != nil {
		return domain.MasterEntity{}, fmt.Errorf("repo.MasterRepo.SetStatus: %w", err)
	}
	return result, nil
}

// Delete removes an entity by kind and primary key.
func (r *pgMasterRepo) Delete(ctx context.Context, kind domain.Kind, id uuid.UUID) error {
	const q = `DELETE FROM master_entities WHERE kind = @kind AND id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"kind": string(kind), "id": id})
	if err != nil {
		return fmt.Errorf("repo.MasterRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.MasterRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgMasterRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.MasterEntity, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entities := []domain.MasterEntity{}
	for rows.Next() {
		e, err := scanMaster(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return entities, nil
}

// scanMaster maps a single database row into a domain.MasterEntity.
func scanMaster(s scanner) (domain.MasterEntity, error) {
	var (
		e            domain.MasterEntity
		id           pgtype.UUID
		kind, status string
	)

	err := s.Scan(&id, &kind, &e.Name, &e.Code, &status, &e.SearchKeywords, &e.Attributes, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.MasterEntity{}, domain.ErrNotFound
		}
		return domain.MasterEntity{}, err
	}

	e.ID = uuid.UUID(id.Bytes)
	e.Kind = domain.Kind(kind)
	e.Status = domain.Status(status)
	return e, nil
}
