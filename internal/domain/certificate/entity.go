package certificate

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Certificado emitido para um estudante. O arquivo binário vive no Artifact
// Store; aqui ficam apenas os metadados e as referências para o arquivo.
type Certificate struct {
	ID             string    `json:"id"`
	StudentID      string    `json:"student_id"`
	CertificateURL string    `json:"certificate_url"`
	PublicID       string    `json:"public_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewCertificate cria um novo certificado apontando para um arquivo já
// armazenado no Artifact Store
func NewCertificate(studentID, certificateURL, publicID string) (*Certificate, error) {
	if studentID == "" {
		return nil, ErrMissingStudentID
	}
	if certificateURL == "" {
		return nil, errors.New("URL do certificado é obrigatória")
	}
	if publicID == "" {
		return nil, errors.New("public ID do certificado é obrigatório")
	}

	return &Certificate{
		ID:             uuid.New().String(),
		StudentID:      studentID,
		CertificateURL: certificateURL,
		PublicID:       publicID,
		CreatedAt:      time.Now(),
	}, nil
}
