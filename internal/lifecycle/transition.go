package lifecycle

import (
	"context"
	"strings"
	"time"

	"fieldsales-service/internal/apperr"
	"fieldsales-service/internal/repository"
	"fieldsales-service/prometheus"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is any row with a status.
type Record interface {
	GetStatus() string
	SetStatus(status string)
}

// Stamper is a record that keeps who moved it into its terminal status and when.
type Stamper interface {
	Stamp(by string, at time.Time)
}

// Request describes one status change.
type Request struct {
	Workflow Workflow
	TenantID string
	// KeyColumn selects the rows to move, e.g. "id" or a group code column.
	KeyColumn string
	Key       interface{}
	// Extra narrows the rows further, e.g. a second key column.
	Extra    map[string]interface{}
	Status   string
	Actor    string
	At       time.Time
	NotFound string
}

// Result reports how many rows matched and how many actually changed status.
type Result struct {
	Matched int
	Changed int
}

// Transition moves every matching row of the tenant to req.Status in one
// transaction. Rows are locked before they are read. Rows already in the
// target status are left untouched, so repeating a transition never re-stamps.
func Transition[T any, PT interface {
	*T
	Record
}](ctx context.Context, db *gorm.DB, req Request) ([]T, Result, error) {
	status := strings.TrimSpace(req.Status)
	if !req.Workflow.Allows(status) {
		return nil, Result{}, apperr.New(apperr.InvalidStatus,
			"Invalid status. Allowed: "+strings.Join(req.Workflow.States, ", "))
	}

	at := req.At
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()

	notFound := req.NotFound
	if notFound == "" {
		notFound = "Record not found"
	}

	var rows []T
	var res Result
	defer prometheus.TrackDBOperation("transition")(time.Now())

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(repository.TenantScope(req.TenantID)).
			Where(clause.Eq{Column: clause.Column{Name: req.KeyColumn}, Value: req.Key})
		for col, v := range req.Extra {
			q = q.Where(clause.Eq{Column: clause.Column{Name: col}, Value: v})
		}
		if err := q.Order("id").Find(&rows).Error; err != nil {
			return apperr.FromDB(err, notFound)
		}
		if len(rows) == 0 {
			return apperr.New(apperr.NotFound, notFound)
		}
		res.Matched = len(rows)

		for i := range rows {
			rec := PT(&rows[i])
			if rec.GetStatus() == status {
				continue
			}
			rec.SetStatus(status)
			if status == req.Workflow.Terminal && req.Workflow.Terminal != "" {
				if s, ok := interface{}(rec).(Stamper); ok {
					s.Stamp(req.Actor, at)
				}
			}
			if err := tx.Save(rec).Error; err != nil {
				return apperr.FromDB(err, notFound)
			}
			res.Changed++
		}
		return nil
	})
	if err != nil {
		return nil, Result{}, err
	}

	if res.Changed > 0 {
		prometheus.RecordTransition(req.Workflow.Entity, status, res.Changed)
	}
	return rows, res, nil
}
