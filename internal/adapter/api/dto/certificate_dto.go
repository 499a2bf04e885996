package dto

import (
	"time"

	"github.com/hugohenrick/certificados-api/internal/domain/certificate"
)

// CertificateResponse representa a resposta com dados de um certificado
type CertificateResponse struct {
	ID             string    `json:"id"`
	StudentID      string    `json:"student_id"`
	CertificateURL string    `json:"certificate_url"`
	PublicID       string    `json:"public_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// PaginationMeta representa os metadados de paginação de uma listagem
type PaginationMeta struct {
	Total           int  `json:"total"`
	TotalPages      int  `json:"total_pages"`
	Page            int  `json:"page"`
	PageSize        int  `json:"page_size"`
	HasNextPage     bool `json:"has_next_page"`
	HasPreviousPage bool `json:"has_previous_page"`
}

// CertificateListResponse representa a resposta com uma página de certificados
type CertificateListResponse struct {
	Certificates []CertificateResponse `json:"certificates"`
	Pagination   PaginationMeta        `json:"pagination"`
}

// CertificateBatchResponse representa o resultado de um envio em lote; quando
// algum arquivo falha os certificados criados e as falhas aparecem juntos
type CertificateBatchResponse struct {
	Certificates []CertificateResponse        `json:"certificates"`
	Failures     []certificate.BatchFileError `json:"failures,omitempty"`
	Message      string                       `json:"message"`
}

// StatsResponse representa as estatísticas globais da coleção
type StatsResponse struct {
	TotalCertificates int `json:"total_certificates"`
	TotalStudents     int `json:"total_students"`
}

// DailyTrendEntry representa o total de certificados criados em um dia
type DailyTrendEntry struct {
	Date  string `json:"date"`
	Total int    `json:"total"`
}

// MonthlyTrendEntry representa o total de certificados criados em um mês
type MonthlyTrendEntry struct {
	Month string `json:"month"`
	Total int    `json:"total"`
}

// BulkDeleteResponse representa o relatório da exclusão em massa
type BulkDeleteResponse struct {
	Message        string                          `json:"message"`
	Attempted      int                             `json:"attempted"`
	Deleted        int                             `json:"deleted"`
	Failed         int                             `json:"failed"`
	Failures       []certificate.BulkDeleteFailure `json:"failures,omitempty"`
	RecordsRemoved int                             `json:"records_removed"`
}

// NewCertificateResponse cria um novo CertificateResponse a partir de um certificado
func NewCertificateResponse(cert *certificate.Certificate) *CertificateResponse {
	return &CertificateResponse{
		ID:             cert.ID,
		StudentID:      cert.StudentID,
		CertificateURL: cert.CertificateURL,
		PublicID:       cert.PublicID,
		CreatedAt:      cert.CreatedAt,
	}
}

// NewCertificateResponses converte uma lista de certificados
func NewCertificateResponses(certs []*certificate.Certificate) []CertificateResponse {
	responses := make([]CertificateResponse, 0, len(certs))
	for _, cert := range certs {
		responses = append(responses, *NewCertificateResponse(cert))
	}
	return responses
}

// NewCertificateListResponse cria um novo CertificateListResponse com os
// metadados de paginação calculados sobre o total de registros
func NewCertificateListResponse(certs []*certificate.Certificate, total, page, pageSize int) *CertificateListResponse {
	totalPages := calculateTotalPages(total, pageSize)

	return &CertificateListResponse{
		Certificates: NewCertificateResponses(certs),
		Pagination: PaginationMeta{
			Total:           total,
			TotalPages:      totalPages,
			Page:            page,
			PageSize:        pageSize,
			HasNextPage:     page < totalPages,
			HasPreviousPage: page > 1,
		},
	}
}

// NewDailyTrendEntries converte os baldes de agregação diária
func NewDailyTrendEntries(points []certificate.TrendPoint) []DailyTrendEntry {
	entries := make([]DailyTrendEntry, 0, len(points))
	for _, p := range points {
		entries = append(entries, DailyTrendEntry{Date: p.Label, Total: p.Count})
	}
	return entries
}

// NewMonthlyTrendEntries converte os baldes de agregação mensal
func NewMonthlyTrendEntries(points []certificate.TrendPoint) []MonthlyTrendEntry {
	entries := make([]MonthlyTrendEntry, 0, len(points))
	for _, p := range points {
		entries = append(entries, MonthlyTrendEntry{Month: p.Label, Total: p.Count})
	}
	return entries
}
