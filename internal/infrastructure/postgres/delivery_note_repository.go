package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/albaranes-api/internal/domain"
	"github.com/jhoicas/albaranes-api/internal/domain/entity"
	"github.com/jhoicas/albaranes-api/internal/domain/policy"
	"github.com/jhoicas/albaranes-api/internal/domain/repository"
)

var _ repository.DeliveryNoteRepository = (*DeliveryNoteRepo)(nil)

const noteColumns = `id, project_id, created_by, description, date, signature, pdf_url, created_at, updated_at`

// DeliveryNoteRepo albaranes; las líneas de trabajo y material viven en tablas
// hijas ordenadas por position y se reescriben enteras en cada Update.
type DeliveryNoteRepo struct {
	pool *pgxpool.Pool
}

func NewDeliveryNoteRepository(pool *pgxpool.Pool) *DeliveryNoteRepo {
	return &DeliveryNoteRepo{pool: pool}
}

func (r *DeliveryNoteRepo) Create(ctx context.Context, n *entity.DeliveryNote) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := `INSERT INTO delivery_notes (` + noteColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		_, err := tx.Exec(ctx, query,
			n.ID, n.ProjectID, n.CreatedBy, n.Description, n.Date, n.Signature, n.PDFURL, n.CreatedAt, n.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert delivery note: %w", err)
		}
		return insertEntries(ctx, tx, n)
	})
}

func (r *DeliveryNoteRepo) GetByID(ctx context.Context, id string) (*entity.DeliveryNote, error) {
	w := &where{}
	w.and("id = " + w.arg(id))
	return r.findOne(ctx, w)
}

func (r *DeliveryNoteRepo) FindOne(ctx context.Context, id string, scope policy.Scope) (*entity.DeliveryNote, error) {
	w := &where{}
	w.and("id = " + w.arg(id))
	w.scope(scope, "")
	return r.findOne(ctx, w)
}

func (r *DeliveryNoteRepo) findOne(ctx context.Context, w *where) (*entity.DeliveryNote, error) {
	n, err := scanNote(r.pool.QueryRow(ctx, `SELECT `+noteColumns+` FROM delivery_notes`+w.String(), w.args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery note: %w", err)
	}
	if err := loadEntries(ctx, r.pool, map[string]*entity.DeliveryNote{n.ID: n}); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *DeliveryNoteRepo) List(ctx context.Context, scope policy.Scope) ([]*entity.DeliveryNote, error) {
	w := &where{}
	w.scope(scope, "")
	rows, err := r.pool.Query(ctx, `SELECT `+noteColumns+` FROM delivery_notes`+w.String()+` ORDER BY created_at`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list delivery notes: %w", err)
	}
	list := []*entity.DeliveryNote{}
	byID := map[string]*entity.DeliveryNote{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan delivery note: %w", err)
		}
		list = append(list, n)
		byID[n.ID] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list delivery notes: %w", err)
	}
	if err := loadEntries(ctx, r.pool, byID); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *DeliveryNoteRepo) Update(ctx context.Context, n *entity.DeliveryNote) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			UPDATE delivery_notes SET project_id = $2, description = $3, date = $4, signature = $5,
				pdf_url = $6, updated_at = $7
			WHERE id = $1`
		tag, err := tx.Exec(ctx, query, n.ID, n.ProjectID, n.Description, n.Date, n.Signature, n.PDFURL, n.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update delivery note: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		for _, table := range []string{"delivery_note_work_entries", "delivery_note_material_entries"} {
			if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE note_id = $1`, n.ID); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return insertEntries(ctx, tx, n)
	})
}

// Delete borra el albarán; las líneas caen por ON DELETE CASCADE.
func (r *DeliveryNoteRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM delivery_notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete delivery note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func insertEntries(ctx context.Context, q Querier, n *entity.DeliveryNote) error {
	for i, w := range n.WorkEntries {
		_, err := q.Exec(ctx,
			`INSERT INTO delivery_note_work_entries (note_id, position, person, hours) VALUES ($1, $2, $3, $4)`,
			n.ID, i, w.Person, w.Hours)
		if err != nil {
			return fmt.Errorf("insert work entry: %w", err)
		}
	}
	for i, m := range n.MaterialEntries {
		_, err := q.Exec(ctx,
			`INSERT INTO delivery_note_material_entries (note_id, position, name, quantity) VALUES ($1, $2, $3, $4)`,
			n.ID, i, m.Name, m.Quantity)
		if err != nil {
			return fmt.Errorf("insert material entry: %w", err)
		}
	}
	return nil
}

// loadEntries rellena las líneas de los albaranes dados con dos consultas.
func loadEntries(ctx context.Context, q Querier, notes map[string]*entity.DeliveryNote) error {
	if len(notes) == 0 {
		return nil
	}
	ids := make([]string, 0, len(notes))
	for id, n := range notes {
		ids = append(ids, id)
		n.WorkEntries = []entity.WorkEntry{}
		n.MaterialEntries = []entity.MaterialEntry{}
	}

	rows, err := q.Query(ctx, `SELECT note_id, person, hours FROM delivery_note_work_entries
		WHERE note_id = ANY($1::uuid[]) ORDER BY note_id, position`, ids)
	if err != nil {
		return fmt.Errorf("load work entries: %w", err)
	}
	for rows.Next() {
		var noteID string
		var w entity.WorkEntry
		if err := rows.Scan(&noteID, &w.Person, &w.Hours); err != nil {
			rows.Close()
			return fmt.Errorf("scan work entry: %w", err)
		}
		notes[noteID].WorkEntries = append(notes[noteID].WorkEntries, w)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load work entries: %w", err)
	}

	rows, err = q.Query(ctx, `SELECT note_id, name, quantity FROM delivery_note_material_entries
		WHERE note_id = ANY($1::uuid[]) ORDER BY note_id, position`, ids)
	if err != nil {
		return fmt.Errorf("load material entries: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var noteID string
		var m entity.MaterialEntry
		if err := rows.Scan(&noteID, &m.Name, &m.Quantity); err != nil {
			return fmt.Errorf("scan material entry: %w", err)
		}
		notes[noteID].MaterialEntries = append(notes[noteID].MaterialEntries, m)
	}
	return rows.Err()
}

func scanNote(row pgx.Row) (*entity.DeliveryNote, error) {
	var n entity.DeliveryNote
	err := row.Scan(&n.ID, &n.ProjectID, &n.CreatedBy, &n.Description, &n.Date, &n.Signature,
		&n.PDFURL, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
