package certificate

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Limite de arquivos aceitos em um único envio em lote
const MaxBatchFiles = 10

// Janelas das agregações de tendência, incluindo o dia/mês corrente
const (
	dailyTrendDays     = 7
	monthlyTrendMonths = 12
)

// File é um arquivo de certificado recebido para upload.
type File struct {
	Name    string
	Content io.Reader
}

// BatchFileError descreve a falha de um arquivo dentro de um envio em lote.
type BatchFileError struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// BulkDeleteFailure descreve um arquivo que não pôde ser removido do
// Artifact Store durante a exclusão em massa.
type BulkDeleteFailure struct {
	CertificateID string `json:"certificate_id"`
	PublicID      string `json:"public_id"`
	Reason        string `json:"reason"`
}

// BulkDeleteReport é o resultado da exclusão em massa de certificados.
type BulkDeleteReport struct {
	Attempted      int                 `json:"attempted"`
	Deleted        int                 `json:"deleted"`
	Failed         int                 `json:"failed"`
	Failures       []BulkDeleteFailure `json:"failures,omitempty"`
	RecordsRemoved int                 `json:"records_removed"`
}

// ListResult é uma página de certificados com o total geral de registros.
type ListResult struct {
	Certificates []*Certificate
	Total        int
	Page         int
	PageSize     int
}

// Stats resume a coleção de certificados.
type Stats struct {
	TotalCertificates int
	TotalStudents     int
}

// TrendPoint é um balde de agregação temporal já formatado para resposta.
type TrendPoint struct {
	Label string
	Count int
}

// Service orquestra o ciclo de vida dos certificados entre o Metadata Store e
// o Artifact Store. Não há transação entre os dois; cada operação define a
// ordem das escritas e o que acontece quando uma das partes falha.
type Service struct {
	repo  Repository
	store ArtifactStore
}

// NewService cria uma nova instância de Service
func NewService(repo Repository, store ArtifactStore) *Service {
	return &Service{
		repo:  repo,
		store: store,
	}
}

// CreateBatch armazena cada arquivo no Artifact Store e em seguida cria o
// registro de metadados correspondente. Cada arquivo é uma unidade
// independente: a falha de um não desfaz os certificados já criados nem
// impede os arquivos seguintes. As falhas por arquivo são devolvidas junto
// com os certificados criados.
func (s *Service) CreateBatch(ctx context.Context, studentID string, files []File) ([]*Certificate, []BatchFileError, error) {
	if studentID == "" {
		return nil, nil, ErrMissingStudentID
	}
	if len(files) == 0 {
		return nil, nil, ErrNoFiles
	}
	if len(files) > MaxBatchFiles {
		return nil, nil, ErrTooManyFiles
	}

	created := make([]*Certificate, 0, len(files))
	var failures []BatchFileError

	for _, f := range files {
		res, err := s.store.Upload(ctx, f.Content, f.Name)
		if err != nil {
			failures = append(failures, BatchFileError{
				FileName: f.Name,
				Reason:   fmt.Sprintf("falha ao enviar arquivo: %v", err),
			})
			continue
		}

		cert, err := NewCertificate(studentID, res.URL, res.PublicID)
		if err != nil {
			failures = append(failures, BatchFileError{FileName: f.Name, Reason: err.Error()})
			continue
		}

		// Se a gravação dos metadados falhar o arquivo já enviado fica órfão
		// no Artifact Store; a falha é reportada, não há compensação
		if err := s.repo.Create(ctx, cert); err != nil {
			failures = append(failures, BatchFileError{
				FileName: f.Name,
				Reason:   fmt.Sprintf("falha ao salvar certificado: %v", err),
			})
			continue
		}

		created = append(created, cert)
	}

	return created, failures, nil
}

// Get busca um certificado pelo ID
func (s *Service) Get(ctx context.Context, id string) (*Certificate, error) {
	return s.repo.FindByID(ctx, id)
}

// Replace troca o arquivo e/ou o estudante de um certificado existente e
// persiste o registro em uma única escrita de metadados.
//
// Política adotada para a troca de arquivo: o arquivo antigo é removido do
// Artifact Store antes do upload do novo. Se o upload falhar depois disso, o
// registro continua apontando para um arquivo que já não existe até que um
// novo Replace conclua; a falha é sempre devolvida ao chamador.
func (s *Service) Replace(ctx context.Context, id string, file *File, newStudentID string) (*Certificate, error) {
	if file == nil && newStudentID == "" {
		return nil, ErrNothingToUpdate
	}

	cert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if file != nil {
		if cert.PublicID != "" {
			if err := s.store.Delete(ctx, cert.PublicID); err != nil {
				return nil, fmt.Errorf("falha ao remover o arquivo antigo: %w", err)
			}
		}

		res, err := s.store.Upload(ctx, file.Content, file.Name)
		if err != nil {
			return nil, fmt.Errorf("falha ao enviar o novo arquivo: %w", err)
		}

		cert.CertificateURL = res.URL
		cert.PublicID = res.PublicID
	}

	if newStudentID != "" {
		cert.StudentID = newStudentID
	}

	if err := s.repo.Update(ctx, cert); err != nil {
		return nil, fmt.Errorf("falha ao atualizar certificado: %w", err)
	}

	return cert, nil
}

// DeleteOne remove o certificado e o arquivo correspondente. A remoção do
// arquivo vem primeiro: se ela falhar a operação inteira é abortada e o
// registro permanece intacto; os metadados só são excluídos depois que o
// Artifact Store confirmou a remoção do arquivo.
func (s *Service) DeleteOne(ctx context.Context, id string) error {
	cert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if cert.PublicID != "" {
		if err := s.store.Delete(ctx, cert.PublicID); err != nil {
			return fmt.Errorf("falha ao remover o arquivo do certificado: %w", err)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("falha ao excluir certificado: %w", err)
	}

	return nil
}

// DeleteAll remove todos os certificados. A exclusão dos arquivos é feita um
// a um, sem interromper o laço em caso de falha; ao final todos os registros
// de metadados são removidos em uma única operação, mesmo que algum arquivo
// não tenha sido excluído. Os arquivos que sobraram ficam órfãos no Artifact
// Store e aparecem em Failures do relatório.
func (s *Service) DeleteAll(ctx context.Context) (*BulkDeleteReport, error) {
	certs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar certificados: %w", err)
	}

	report := &BulkDeleteReport{Attempted: len(certs)}
	for _, cert := range certs {
		if cert.PublicID == "" {
			report.Deleted++
			continue
		}

		if err := s.store.Delete(ctx, cert.PublicID); err != nil {
			report.Failed++
			report.Failures = append(report.Failures, BulkDeleteFailure{
				CertificateID: cert.ID,
				PublicID:      cert.PublicID,
				Reason:        err.Error(),
			})
			continue
		}
		report.Deleted++
	}

	removed, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return report, fmt.Errorf("falha ao excluir registros: %w", err)
	}
	report.RecordsRemoved = removed

	return report, nil
}

// DeleteByStudent remove apenas os metadados dos certificados do estudante.
// Os arquivos correspondentes permanecem no Artifact Store; essa assimetria
// faz parte do contrato da operação e está refletida na resposta da API.
func (s *Service) DeleteByStudent(ctx context.Context, studentID string) (int, error) {
	if studentID == "" {
		return 0, ErrMissingStudentID
	}

	removed, err := s.repo.DeleteByStudent(ctx, studentID)
	if err != nil {
		return 0, fmt.Errorf("falha ao excluir certificados do estudante: %w", err)
	}

	return removed, nil
}

// List retorna uma página de certificados ordenados por data de criação
// decrescente. Valores ausentes ou não positivos de page e pageSize são
// substituídos pelos padrões 1 e 10
func (s *Service) List(ctx context.Context, page, pageSize int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	certs, err := s.repo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar certificados: %w", err)
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao contar certificados: %w", err)
	}

	return &ListResult{
		Certificates: certs,
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
	}, nil
}

// SearchByStudent retorna todos os certificados de um estudante
func (s *Service) SearchByStudent(ctx context.Context, studentID string) ([]*Certificate, error) {
	if studentID == "" {
		return nil, ErrMissingStudentID
	}

	certs, err := s.repo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("falha ao buscar certificados do estudante: %w", err)
	}

	return certs, nil
}

// Stats retorna o total de certificados e de estudantes distintos
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao contar certificados: %w", err)
	}

	students, err := s.repo.CountDistinctStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("falha ao contar estudantes: %w", err)
	}

	return &Stats{TotalCertificates: total, TotalStudents: students}, nil
}

// DailyTrend agrupa por dia os certificados criados nos últimos 7 dias,
// incluindo o dia corrente. Somente dias com pelo menos um certificado
// aparecem no resultado, em ordem crescente de data
func (s *Service) DailyTrend(ctx context.Context) ([]TrendPoint, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(dailyTrendDays - 1))

	rows, err := s.repo.DailyCounts(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("falha ao agregar certificados por dia: %w", err)
	}

	points := make([]TrendPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, TrendPoint{
			Label: row.Day.Format("2006-01-02"),
			Count: row.Count,
		})
	}

	return points, nil
}

// MonthlyTrend agrupa por mês os certificados criados nos últimos 12 meses,
// incluindo o mês corrente. O rótulo de cada balde é "mês-ano", por exemplo
// "3-2024"; meses sem certificados não aparecem
func (s *Service) MonthlyTrend(ctx context.Context) ([]TrendPoint, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
		AddDate(0, -(monthlyTrendMonths - 1), 0)

	rows, err := s.repo.MonthlyCounts(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("falha ao agregar certificados por mês: %w", err)
	}

	points := make([]TrendPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, TrendPoint{
			Label: fmt.Sprintf("%d-%d", row.Month, row.Year),
			Count: row.Count,
		})
	}

	return points, nil
}

// CheckStorage verifica a disponibilidade do Artifact Store
func (s *Service) CheckStorage(ctx context.Context) error {
	return s.store.Ping(ctx)
}
