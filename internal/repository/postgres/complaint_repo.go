package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"civic-portal/internal/apperr"
	"civic-portal/internal/complaint"
	"civic-portal/internal/models"
	"civic-portal/internal/repository"
)

type ComplaintRepo struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewComplaintRepo(db *pgxpool.Pool) *ComplaintRepo {
	return &ComplaintRepo{db: db, now: time.Now}
}

const complaintColumns = `
	c.id, c.reporter_id, c.category, c.description, c.priority, c.department,
	c.latitude, c.longitude, c.address, c.image_url,
	c.classifier_label, c.classifier_confidence,
	c.status, c.admin_notes, c.assigned_to, c.created_at, c.updated_at, c.resolved_at`

func scanComplaint(row pgx.Row) (*models.Complaint, error) {
	var (
		c     models.Complaint
		label *string
		conf  *float64
	)
	err := row.Scan(
		&c.ID, &c.ReporterID, &c.Category, &c.Description, &c.Priority, &c.Department,
		&c.Location.Latitude, &c.Location.Longitude, &c.Location.Address, &c.ImageURL,
		&label, &conf,
		&c.Status, &c.AdminNotes, &c.AssignedTo, &c.CreatedAt, &c.UpdatedAt, &c.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	if label != nil && conf != nil {
		c.ClassifierResult = &models.ClassifierResult{Label: *label, Confidence: *conf}
	}
	return &c, nil
}

func (r *ComplaintRepo) Create(ctx context.Context, in *models.Complaint) (*models.Complaint, error) {
	c := *in
	if err := complaint.Prepare(&c, r.now().UTC()); err != nil {
		return nil, err
	}
	c.ID = uuid.NewString()

	var label *string
	var conf *float64
	if c.ClassifierResult != nil {
		label, conf = &c.ClassifierResult.Label, &c.ClassifierResult.Confidence
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO complaints (
			id, reporter_id, category, description, priority, department,
			latitude, longitude, address, image_url,
			classifier_label, classifier_confidence,
			status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		c.ID, c.ReporterID, c.Category, c.Description, c.Priority, c.Department,
		c.Location.Latitude, c.Location.Longitude, c.Location.Address, c.ImageURL,
		label, conf,
		c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.Storage("insert complaint", err)
	}
	return &c, nil
}

func (r *ComplaintRepo) Get(ctx context.Context, id string) (*models.Complaint, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("complaint %q: %w", id, apperr.ErrNotFound)
	}
	c, err := scanComplaint(r.db.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints c WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("complaint %s: %w", id, apperr.ErrNotFound)
		}
		return nil, apperr.Storage("get complaint", err)
	}
	return c, nil
}

func (r *ComplaintRepo) ListByReporter(ctx context.Context, reporterID string) ([]models.Complaint, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+complaintColumns+`
		FROM complaints c
		WHERE c.reporter_id = $1
		ORDER BY c.created_at DESC`, reporterID)
	if err != nil {
		return nil, apperr.Storage("list complaints by reporter", err)
	}
	return collect(rows)
}

// ListAll returns a page of complaints matching f, newest first.
// - SearchText: description or address, ILIKE
// - Status, Category, Department: exact
func (r *ComplaintRepo) ListAll(ctx context.Context, f repository.ComplaintFilter) ([]models.Complaint, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	whereSQL, args := buildComplaintWhere(f)
	sql := fmt.Sprintf(`
		SELECT %s
		FROM complaints c
		%s
		ORDER BY c.created_at DESC
		LIMIT $%d OFFSET $%d
	`, complaintColumns, whereSQL, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Storage("list complaints", err)
	}
	return collect(rows)
}

// CountAll returns the number of complaints matching f, ignoring the page
// (for pagination).
func (r *ComplaintRepo) CountAll(ctx context.Context, f repository.ComplaintFilter) (int, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	whereSQL, args := buildComplaintWhere(f)
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM complaints c `+whereSQL, args...).Scan(&n); err != nil {
		return 0, apperr.Storage("count complaints", err)
	}
	return n, nil
}

// UpdateStatus applies an admin edit inside a transaction so the lifecycle
// check sees the row it is about to overwrite.
func (r *ComplaintRepo) UpdateStatus(ctx context.Context, id string, u models.ComplaintUpdate) (*models.Complaint, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("complaint %q: %w", id, apperr.ErrNotFound)
	}
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperr.Storage("begin update", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	c, err := scanComplaint(tx.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints c WHERE c.id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("complaint %s: %w", id, apperr.ErrNotFound)
		}
		return nil, apperr.Storage("lock complaint", err)
	}
	if err := complaint.ApplyUpdate(c, u, r.now().UTC()); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE complaints SET
			status=$1, priority=$2, category=$3, department=$4,
			admin_notes=$5, assigned_to=$6, updated_at=$7, resolved_at=$8
		WHERE id=$9`,
		c.Status, c.Priority, c.Category, c.Department,
		c.AdminNotes, c.AssignedTo, c.UpdatedAt, c.ResolvedAt, c.ID,
	)
	if err != nil {
		return nil, apperr.Storage("update complaint", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Storage("commit update", err)
	}
	return c, nil
}

func (r *ComplaintRepo) GetStats(ctx context.Context, reporterID string) (*models.Stats, error) {
	sql := `SELECT status, category, COUNT(*) FROM complaints`
	args := []any{}
	if s := strings.TrimSpace(reporterID); s != "" {
		if _, err := uuid.Parse(s); err != nil {
			return &models.Stats{ByCategory: map[models.Category]int{}}, nil
		}
		args = append(args, s)
		sql += ` WHERE reporter_id = $1`
	}
	sql += ` GROUP BY status, category`

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Storage("complaint stats", err)
	}
	defer rows.Close()

	st := &models.Stats{ByCategory: map[models.Category]int{}}
	for rows.Next() {
		var (
			status   models.Status
			category models.Category
			n        int
		)
		if err := rows.Scan(&status, &category, &n); err != nil {
			return nil, apperr.Storage("complaint stats", err)
		}
		addStats(st, status, category, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("complaint stats", err)
	}
	return st, nil
}

func addStats(st *models.Stats, status models.Status, category models.Category, n int) {
	st.Total += n
	st.ByCategory[category] += n
	switch status {
	case models.StatusPending:
		st.Pending += n
	case models.StatusInProgress:
		st.InProgress += n
	case models.StatusResolved:
		st.Resolved += n
	case models.StatusRejected:
		st.Rejected += n
	}
}

func collect(rows pgx.Rows) ([]models.Complaint, error) {
	defer rows.Close()
	out := []models.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, apperr.Storage("scan complaint", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("scan complaint", err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// buildComplaintWhere composes WHERE clause and args for a validated filter.
func buildComplaintWhere(f repository.ComplaintFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	// free-text search (ILIKE)
	if s := strings.TrimSpace(f.SearchText); s != "" {
		p := "%" + escapeLike(s) + "%"
		args = append(args, p, p)
		clauses = append(clauses, "(c.description ILIKE $"+itoa(len(args)-1)+" OR c.address ILIKE $"+itoa(len(args))+")")
	}

	// exact filters
	if f.Status != "" {
		args = append(args, f.Status)
		clauses = append(clauses, "c.status = $"+itoa(len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		clauses = append(clauses, "c.category = $"+itoa(len(args)))
	}
	if d := strings.TrimSpace(f.Department); d != "" {
		args = append(args, d)
		clauses = append(clauses, "c.department = $"+itoa(len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func itoa(i int) string { return strconv.Itoa(i) }
