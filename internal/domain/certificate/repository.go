package certificate

import (
	"context"
	"io"
	"time"
)

// DailyCount é o total de certificados criados em um dia.
type DailyCount struct {
	Day   time.Time
	Count int
}

// MonthlyCount é o total de certificados criados em um mês.
type MonthlyCount struct {
	Year  int
	Month int
	Count int
}

// Repository define a interface para operações no Metadata Store
type Repository interface {
	// Create insere um novo registro de certificado
	Create(ctx context.Context, cert *Certificate) error

	// FindByID busca um certificado pelo ID
	FindByID(ctx context.Context, id string) (*Certificate, error)

	// FindByStudent lista os certificados de um estudante
	FindByStudent(ctx context.Context, studentID string) ([]*Certificate, error)

	// FindAll lista todos os certificados
	FindAll(ctx context.Context) ([]*Certificate, error)

	// List lista os certificados ordenados por created_at decrescente
	List(ctx context.Context, limit, offset int) ([]*Certificate, error)

	// Count conta o total de certificados
	Count(ctx context.Context) (int, error)

	// CountDistinctStudents conta quantos estudantes distintos possuem certificados
	CountDistinctStudents(ctx context.Context) (int, error)

	// Update atualiza os dados de um certificado existente
	Update(ctx context.Context, cert *Certificate) error

	// Delete remove o registro de um certificado
	Delete(ctx context.Context, id string) error

	// DeleteAll remove todos os registros e retorna quantos foram removidos
	DeleteAll(ctx context.Context) (int, error)

	// DeleteByStudent remove os registros de um estudante e retorna quantos foram removidos
	DeleteByStudent(ctx context.Context, studentID string) (int, error)

	// DailyCounts agrupa por dia os certificados criados a partir de since,
	// em ordem crescente de data; dias sem certificados não aparecem
	DailyCounts(ctx context.Context, since time.Time) ([]DailyCount, error)

	// MonthlyCounts agrupa por ano e mês os certificados criados a partir de
	// since, em ordem crescente; meses sem certificados não aparecem
	MonthlyCounts(ctx context.Context, since time.Time) ([]MonthlyCount, error)
}

// UploadResult é o resultado do armazenamento de um arquivo no Artifact Store.
type UploadResult struct {
	URL      string
	PublicID string
}

// ArtifactStore define a interface para o serviço externo que guarda os
// arquivos binários dos certificados. As escritas não são atômicas com o
// Metadata Store; a ordenação fica a cargo do Service.
type ArtifactStore interface {
	// Upload armazena o arquivo e retorna a URL pública e o public ID
	Upload(ctx context.Context, file io.Reader, filename string) (*UploadResult, error)

	// Delete remove o arquivo identificado pelo public ID; remover um arquivo
	// que já não existe não é erro
	Delete(ctx context.Context, publicID string) error

	// Ping verifica a disponibilidade do serviço
	Ping(ctx context.Context) error
}
