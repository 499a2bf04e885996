package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hugohenrick/certificados-api/internal/domain/certificate"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CertificateRepository implementa a interface certificate.Repository
type CertificateRepository struct {
	db *pgxpool.Pool
}

// NewCertificateRepository cria uma nova instância de CertificateRepository
func NewCertificateRepository(db *pgxpool.Pool) certificate.Repository {
	return &CertificateRepository{
		db: db,
	}
}

const certificateColumns = "id, student_id, certificate_url, public_id, created_at"

func scanCertificate(row pgx.Row) (*certificate.Certificate, error) {
	var cert certificate.Certificate
	err := row.Scan(&cert.ID, &cert.StudentID, &cert.CertificateURL, &cert.PublicID, &cert.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func collectCertificates(rows pgx.Rows) ([]*certificate.Certificate, error) {
	defer rows.Close()

	certificates := []*certificate.Certificate{}
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("falha ao ler certificado: %w", err)
		}
		certificates = append(certificates, cert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar certificados: %w", err)
	}

	return certificates, nil
}

// Create implementa o método Create da interface certificate.Repository
func (r *CertificateRepository) Create(ctx context.Context, cert *certificate.Certificate) error {
	query := `
		INSERT INTO certificates (id, student_id, certificate_url, public_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		cert.ID, cert.StudentID, cert.CertificateURL, cert.PublicID, cert.CreatedAt)
	if err != nil {
		return fmt.Errorf("falha ao inserir certificado: %w", err)
	}

	return nil
}

// FindByID implementa o método FindByID da interface certificate.Repository
func (r *CertificateRepository) FindByID(ctx context.Context, id string) (*certificate.Certificate, error) {
	query := fmt.Sprintf("SELECT %s FROM certificates WHERE id = $1", certificateColumns)

	cert, err := scanCertificate(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", certificate.ErrNotFound, id)
		}
		return nil, fmt.Errorf("falha ao buscar certificado: %w", err)
	}

	return cert, nil
}

// FindByStudent implementa o método FindByStudent da interface certificate.Repository
func (r *CertificateRepository) FindByStudent(ctx context.Context, studentID string) ([]*certificate.Certificate, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM certificates
		WHERE student_id = $1
		ORDER BY created_at DESC
	`, certificateColumns)

	rows, err := r.db.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar certificados: %w", err)
	}

	return collectCertificates(rows)
}

// FindAll implementa o método FindAll da interface certificate.Repository
func (r *CertificateRepository) FindAll(ctx context.Context) ([]*certificate.Certificate, error) {
	query := fmt.Sprintf("SELECT %s FROM certificates ORDER BY created_at DESC", certificateColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar certificados: %w", err)
	}

	return collectCertificates(rows)
}

// List implementa o método List da interface certificate.Repository
func (r *CertificateRepository) List(ctx context.Context, limit, offset int) ([]*certificate.Certificate, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT %s FROM certificates
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, certificateColumns)

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar certificados: %w", err)
	}

	return collectCertificates(rows)
}

// Count implementa o método Count da interface certificate.Repository
func (r *CertificateRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM certificates").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("falha ao contar certificados: %w", err)
	}

	return count, nil
}

// CountDistinctStudents implementa o método CountDistinctStudents da interface certificate.Repository
func (r *CertificateRepository) CountDistinctStudents(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(DISTINCT student_id) FROM certificates").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("falha ao contar estudantes: %w", err)
	}

	return count, nil
}

// Update implementa o método Update da interface certificate.Repository
func (r *CertificateRepository) Update(ctx context.Context, cert *certificate.Certificate) error {
	query := `
		UPDATE certificates SET
			student_id = $1, certificate_url = $2, public_id = $3
		WHERE id = $4
	`

	tag, err := r.db.Exec(ctx, query,
		cert.StudentID, cert.CertificateURL, cert.PublicID, cert.ID)
	if err != nil {
		return fmt.Errorf("falha ao atualizar certificado: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", certificate.ErrNotFound, cert.ID)
	}

	return nil
}

// Delete implementa o método Delete da interface certificate.Repository
func (r *CertificateRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM certificates WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("falha ao excluir certificado: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", certificate.ErrNotFound, id)
	}

	return nil
}

// DeleteAll implementa o método DeleteAll da interface certificate.Repository
func (r *CertificateRepository) DeleteAll(ctx context.Context) (int, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM certificates")
	if err != nil {
		return 0, fmt.Errorf("falha ao excluir certificados: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// DeleteByStudent implementa o método DeleteByStudent da interface certificate.Repository
func (r *CertificateRepository) DeleteByStudent(ctx context.Context, studentID string) (int, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM certificates WHERE student_id = $1", studentID)
	if err != nil {
		return 0, fmt.Errorf("falha ao excluir certificados do estudante: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// DailyCounts implementa o método DailyCounts da interface certificate.Repository
func (r *CertificateRepository) DailyCounts(ctx context.Context, since time.Time) ([]certificate.DailyCount, error) {
	query := `
		SELECT created_at::date AS day, COUNT(*) AS total
		FROM certificates
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("falha ao agregar certificados por dia: %w", err)
	}
	defer rows.Close()

	counts := []certificate.DailyCount{}
	for rows.Next() {
		var c certificate.DailyCount
		if err := rows.Scan(&c.Day, &c.Count); err != nil {
			return nil, fmt.Errorf("falha ao ler agregação diária: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar agregação diária: %w", err)
	}

	return counts, nil
}

// MonthlyCounts implementa o método MonthlyCounts da interface certificate.Repository
func (r *CertificateRepository) MonthlyCounts(ctx context.Context, since time.Time) ([]certificate.MonthlyCount, error) {
	query := `
		SELECT EXTRACT(YEAR FROM created_at)::int AS year,
		       EXTRACT(MONTH FROM created_at)::int AS month,
		       COUNT(*) AS total
		FROM certificates
		WHERE created_at >= $1
		GROUP BY year, month
		ORDER BY year, month
	`

	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("falha ao agregar certificados por mês: %w", err)
	}
	defer rows.Close()

	counts := []certificate.MonthlyCount{}
	for rows.Next() {
		var c certificate.MonthlyCount
		if err := rows.Scan(&c.Year, &c.Month, &c.Count); err != nil {
			return nil, fmt.Errorf("falha ao ler agregação mensal: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("erro ao iterar agregação mensal: %w", err)
	}

	return counts, nil
}
