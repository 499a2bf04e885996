package certificate_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/certificados-api/internal/domain/certificate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCertificate(t *testing.T) {
	t.Run("preenche ID e data de criação", func(t *testing.T) {
		cert, err := certificate.NewCertificate("student-1", "https://files.example/blob-1", "blob-1")
		require.NoError(t, err)

		_, err = uuid.Parse(cert.ID)
		assert.NoError(t, err)
		assert.Equal(t, "student-1", cert.StudentID)
		assert.Equal(t, "https://files.example/blob-1", cert.CertificateURL)
		assert.Equal(t, "blob-1", cert.PublicID)
		assert.WithinDuration(t, time.Now(), cert.CreatedAt, time.Minute)
	})

	t.Run("valida os campos obrigatórios", func(t *testing.T) {
		_, err := certificate.NewCertificate("", "https://files.example/blob-1", "blob-1")
		assert.ErrorIs(t, err, certificate.ErrMissingStudentID)

		_, err = certificate.NewCertificate("student-1", "", "blob-1")
		assert.Error(t, err)

		_, err = certificate.NewCertificate("student-1", "https://files.example/blob-1", "")
		assert.Error(t, err)
	})
}
