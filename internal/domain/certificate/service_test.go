package certificate_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/hugohenrick/certificados-api/internal/domain/certificate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo é uma implementação em memória de certificate.Repository
type memRepo struct {
	certs []certificate.Certificate
}

func newMemRepo() *memRepo {
	return &memRepo{}
}

func (r *memRepo) sorted() []certificate.Certificate {
	out := make([]certificate.Certificate, len(r.certs))
	copy(out, r.certs)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *memRepo) Create(_ context.Context, cert *certificate.Certificate) error {
	r.certs = append(r.certs, *cert)
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*certificate.Certificate, error) {
	for _, c := range r.certs {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", certificate.ErrNotFound, id)
}

func (r *memRepo) FindByStudent(_ context.Context, studentID string) ([]*certificate.Certificate, error) {
	result := []*certificate.Certificate{}
	for _, c := range r.sorted() {
		if c.StudentID == studentID {
			found := c
			result = append(result, &found)
		}
	}
	return result, nil
}

func (r *memRepo) FindAll(_ context.Context) ([]*certificate.Certificate, error) {
	result := []*certificate.Certificate{}
	for _, c := range r.sorted() {
		found := c
		result = append(result, &found)
	}
	return result, nil
}

func (r *memRepo) List(_ context.Context, limit, offset int) ([]*certificate.Certificate, error) {
	all := r.sorted()
	if offset >= len(all) {
		return []*certificate.Certificate{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	result := []*certificate.Certificate{}
	for _, c := range all[offset:end] {
		found := c
		result = append(result, &found)
	}
	return result, nil
}

func (r *memRepo) Count(_ context.Context) (int, error) {
	return len(r.certs), nil
}

func (r *memRepo) CountDistinctStudents(_ context.Context) (int, error) {
	students := map[string]bool{}
	for _, c := range r.certs {
		students[c.StudentID] = true
	}
	return len(students), nil
}

func (r *memRepo) Update(_ context.Context, cert *certificate.Certificate) error {
	for i, c := range r.certs {
		if c.ID == cert.ID {
			r.certs[i] = *cert
			return nil
		}
	}
	return fmt.Errorf("%w: %s", certificate.ErrNotFound, cert.ID)
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	for i, c := range r.certs {
		if c.ID == id {
			r.certs = append(r.certs[:i], r.certs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", certificate.ErrNotFound, id)
}

func (r *memRepo) DeleteAll(_ context.Context) (int, error) {
	removed := len(r.certs)
	r.certs = nil
	return removed, nil
}

func (r *memRepo) DeleteByStudent(_ context.Context, studentID string) (int, error) {
	kept := r.certs[:0]
	removed := 0
	for _, c := range r.certs {
		if c.StudentID == studentID {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	r.certs = kept
	return removed, nil
}

func (r *memRepo) DailyCounts(_ context.Context, since time.Time) ([]certificate.DailyCount, error) {
	buckets := map[time.Time]int{}
	for _, c := range r.certs {
		if c.CreatedAt.Before(since) {
			continue
		}
		day := time.Date(c.CreatedAt.Year(), c.CreatedAt.Month(), c.CreatedAt.Day(), 0, 0, 0, 0, c.CreatedAt.Location())
		buckets[day]++
	}

	counts := []certificate.DailyCount{}
	for day, count := range buckets {
		counts = append(counts, certificate.DailyCount{Day: day, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Day.Before(counts[j].Day) })
	return counts, nil
}

func (r *memRepo) MonthlyCounts(_ context.Context, since time.Time) ([]certificate.MonthlyCount, error) {
	type yearMonth struct{ year, month int }
	buckets := map[yearMonth]int{}
	for _, c := range r.certs {
		if c.CreatedAt.Before(since) {
			continue
		}
		buckets[yearMonth{c.CreatedAt.Year(), int(c.CreatedAt.Month())}]++
	}

	counts := []certificate.MonthlyCount{}
	for ym, count := range buckets {
		counts = append(counts, certificate.MonthlyCount{Year: ym.year, Month: ym.month, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Year != counts[j].Year {
			return counts[i].Year < counts[j].Year
		}
		return counts[i].Month < counts[j].Month
	})
	return counts, nil
}

// memStore é uma implementação em memória de certificate.ArtifactStore com
// injeção de falhas por chamada de upload e por public ID
type memStore struct {
	blobs       map[string][]byte
	uploads     int
	failUploads map[int]bool
	failDeletes map[string]bool
	deleted     []string
}

func newMemStore() *memStore {
	return &memStore{
		blobs:       map[string][]byte{},
		failUploads: map[int]bool{},
		failDeletes: map[string]bool{},
	}
}

func (s *memStore) Upload(_ context.Context, file io.Reader, _ string) (*certificate.UploadResult, error) {
	s.uploads++
	if s.failUploads[s.uploads] {
		return nil, errors.New("upload recusado")
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	publicID := fmt.Sprintf("blob-%d", s.uploads)
	s.blobs[publicID] = data
	return &certificate.UploadResult{
		URL:      "https://files.example/" + publicID,
		PublicID: publicID,
	}, nil
}

func (s *memStore) Delete(_ context.Context, publicID string) error {
	if s.failDeletes[publicID] {
		return errors.New("exclusão recusada")
	}
	delete(s.blobs, publicID)
	s.deleted = append(s.deleted, publicID)
	return nil
}

func (s *memStore) Ping(_ context.Context) error {
	return nil
}

func newTestService() (*certificate.Service, *memRepo, *memStore) {
	repo := newMemRepo()
	store := newMemStore()
	return certificate.NewService(repo, store), repo, store
}

func fileOf(name, content string) certificate.File {
	return certificate.File{Name: name, Content: bytes.NewReader([]byte(content))}
}

func filesOf(n int) []certificate.File {
	files := make([]certificate.File, 0, n)
	for i := 1; i <= n; i++ {
		files = append(files, fileOf(fmt.Sprintf("cert-%d.pdf", i), fmt.Sprintf("conteudo-%d", i)))
	}
	return files
}

func seedCertificates(t *testing.T, repo *memRepo, n int, studentID string, base time.Time) []*certificate.Certificate {
	t.Helper()

	certs := make([]*certificate.Certificate, 0, n)
	for i := 0; i < n; i++ {
		cert := &certificate.Certificate{
			ID:             fmt.Sprintf("%s-cert-%d", studentID, i),
			StudentID:      studentID,
			CertificateURL: fmt.Sprintf("https://files.example/%s-%d", studentID, i),
			PublicID:       fmt.Sprintf("%s-blob-%d", studentID, i),
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(context.Background(), cert))
		certs = append(certs, cert)
	}
	return certs
}

func TestCreateBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("cria um certificado por arquivo", func(t *testing.T) {
		svc, repo, store := newTestService()

		created, failures, err := svc.CreateBatch(ctx, "student-1", filesOf(3))
		require.NoError(t, err)
		assert.Empty(t, failures)
		require.Len(t, created, 3)

		for i, cert := range created {
			assert.Equal(t, "student-1", cert.StudentID)
			assert.NotEmpty(t, cert.ID)
			assert.NotEmpty(t, cert.CertificateURL)
			// O arquivo enviado deve ser recuperável pelo public ID do registro
			assert.Equal(t, []byte(fmt.Sprintf("conteudo-%d", i+1)), store.blobs[cert.PublicID])
		}

		total, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
	})

	t.Run("falha de um arquivo não impede os demais", func(t *testing.T) {
		svc, repo, store := newTestService()
		store.failUploads[2] = true

		created, failures, err := svc.CreateBatch(ctx, "student-1", filesOf(3))
		require.NoError(t, err)
		assert.Len(t, created, 2)
		require.Len(t, failures, 1)
		assert.Equal(t, "cert-2.pdf", failures[0].FileName)
		assert.Contains(t, failures[0].Reason, "upload recusado")

		total, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, store.blobs, 2)
	})

	t.Run("todas as falhas são reportadas", func(t *testing.T) {
		svc, repo, store := newTestService()
		store.failUploads[1] = true
		store.failUploads[2] = true

		created, failures, err := svc.CreateBatch(ctx, "student-1", filesOf(2))
		require.NoError(t, err)
		assert.Empty(t, created)
		assert.Len(t, failures, 2)

		total, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, total)
	})

	t.Run("valida a entrada", func(t *testing.T) {
		svc, _, _ := newTestService()

		_, _, err := svc.CreateBatch(ctx, "", filesOf(1))
		assert.ErrorIs(t, err, certificate.ErrMissingStudentID)

		_, _, err = svc.CreateBatch(ctx, "student-1", nil)
		assert.ErrorIs(t, err, certificate.ErrNoFiles)

		_, _, err = svc.CreateBatch(ctx, "student-1", filesOf(certificate.MaxBatchFiles+1))
		assert.ErrorIs(t, err, certificate.ErrTooManyFiles)
	})
}

func TestReplace(t *testing.T) {
	ctx := context.Background()

	t.Run("troca o arquivo e mantém o registro", func(t *testing.T) {
		svc, repo, store := newTestService()
		created, _, err := svc.CreateBatch(ctx, "student-1", filesOf(1))
		require.NoError(t, err)
		original := created[0]

		newFile := fileOf("novo.pdf", "novo-conteudo")
		updated, err := svc.Replace(ctx, original.ID, &newFile, "")
		require.NoError(t, err)

		assert.Equal(t, original.ID, updated.ID)
		assert.Equal(t, original.StudentID, updated.StudentID)
		assert.NotEqual(t, original.PublicID, updated.PublicID)
		assert.Equal(t, []byte("novo-conteudo"), store.blobs[updated.PublicID])

		// O arquivo antigo foi removido do Artifact Store
		assert.Contains(t, store.deleted, original.PublicID)
		_, oldExists := store.blobs[original.PublicID]
		assert.False(t, oldExists)

		stored, err := repo.FindByID(ctx, original.ID)
		require.NoError(t, err)
		assert.Equal(t, updated.PublicID, stored.PublicID)
		assert.Equal(t, updated.CertificateURL, stored.CertificateURL)
	})

	t.Run("troca apenas o estudante sem tocar no arquivo", func(t *testing.T) {
		svc, repo, store := newTestService()
		created, _, err := svc.CreateBatch(ctx, "student-1", filesOf(1))
		require.NoError(t, err)

		uploadsBefore := store.uploads
		updated, err := svc.Replace(ctx, created[0].ID, nil, "student-2")
		require.NoError(t, err)

		assert.Equal(t, "student-2", updated.StudentID)
		assert.Equal(t, created[0].PublicID, updated.PublicID)
		assert.Equal(t, uploadsBefore, store.uploads)
		assert.Empty(t, store.deleted)

		stored, err := repo.FindByID(ctx, created[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "student-2", stored.StudentID)
	})

	t.Run("certificado inexistente", func(t *testing.T) {
		svc, _, _ := newTestService()
		newFile := fileOf("novo.pdf", "novo-conteudo")

		_, err := svc.Replace(ctx, "nao-existe", &newFile, "")
		assert.ErrorIs(t, err, certificate.ErrNotFound)
	})

	t.Run("sem arquivo e sem estudante", func(t *testing.T) {
		svc, _, _ := newTestService()

		_, err := svc.Replace(ctx, "qualquer", nil, "")
		assert.ErrorIs(t, err, certificate.ErrNothingToUpdate)
	})

	t.Run("falha no upload deixa o registro apontando para o arquivo removido", func(t *testing.T) {
		svc, repo, store := newTestService()
		created, _, err := svc.CreateBatch(ctx, "student-1", filesOf(1))
		require.NoError(t, err)
		original := created[0]

		store.failUploads[store.uploads+1] = true
		newFile := fileOf("novo.pdf", "novo-conteudo")

		_, err = svc.Replace(ctx, original.ID, &newFile, "")
		require.Error(t, err)

		// Janela de inconsistência documentada: o arquivo antigo já foi
		// removido mas o registro continua referenciando o public ID antigo
		_, oldExists := store.blobs[original.PublicID]
		assert.False(t, oldExists)

		stored, err := repo.FindByID(ctx, original.ID)
		require.NoError(t, err)
		assert.Equal(t, original.PublicID, stored.PublicID)
	})
}

func TestDeleteOne(t *testing.T) {
	ctx := context.Background()

	t.Run("remove arquivo e registro", func(t *testing.T) {
		svc, repo, store := newTestService()
		created, _, err := svc.CreateBatch(ctx, "student-1", filesOf(1))
		require.NoError(t, err)

		require.NoError(t, svc.DeleteOne(ctx, created[0].ID))

		_, err = repo.FindByID(ctx, created[0].ID)
		assert.ErrorIs(t, err, certificate.ErrNotFound)
		assert.Empty(t, store.blobs)
	})

	t.Run("falha na exclusão do arquivo preserva o registro", func(t *testing.T) {
		svc, repo, store := newTestService()
		created, _, err := svc.CreateBatch(ctx, "student-1", filesOf(1))
		require.NoError(t, err)
		store.failDeletes[created[0].PublicID] = true

		err = svc.DeleteOne(ctx, created[0].ID)
		require.Error(t, err)

		// Registro e arquivo permanecem intactos
		stored, err := repo.FindByID(ctx, created[0].ID)
		require.NoError(t, err)
		assert.Equal(t, created[0].PublicID, stored.PublicID)
		assert.Contains(t, store.blobs, created[0].PublicID)
	})

	t.Run("certificado inexistente", func(t *testing.T) {
		svc, _, _ := newTestService()
		assert.ErrorIs(t, svc.DeleteOne(ctx, "nao-existe"), certificate.ErrNotFound)
	})
}

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()

	t.Run("remove todos os registros mesmo com falhas de arquivo", func(t *testing.T) {
		svc, repo, store := newTestService()
		created, _, err := svc.CreateBatch(ctx, "student-1", filesOf(5))
		require.NoError(t, err)
		require.Len(t, created, 5)

		store.failDeletes[created[2].PublicID] = true

		report, err := svc.DeleteAll(ctx)
		require.NoError(t, err)

		assert.Equal(t, 5, report.Attempted)
		assert.Equal(t, 4, report.Deleted)
		assert.Equal(t, 1, report.Failed)
		require.Len(t, report.Failures, 1)
		assert.Equal(t, created[2].ID, report.Failures[0].CertificateID)
		assert.Equal(t, created[2].PublicID, report.Failures[0].PublicID)
		assert.NotEmpty(t, report.Failures[0].Reason)
		assert.Equal(t, 5, report.RecordsRemoved)

		// Metadados zerados; o arquivo que falhou vira órfão no Artifact Store
		total, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Len(t, store.blobs, 1)
		assert.Contains(t, store.blobs, created[2].PublicID)
	})

	t.Run("coleção vazia", func(t *testing.T) {
		svc, _, _ := newTestService()

		report, err := svc.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, report.Attempted)
		assert.Equal(t, 0, report.RecordsRemoved)
	})
}

func TestDeleteByStudent(t *testing.T) {
	ctx := context.Background()

	t.Run("remove apenas os metadados do estudante", func(t *testing.T) {
		svc, repo, store := newTestService()
		_, _, err := svc.CreateBatch(ctx, "student-1", filesOf(2))
		require.NoError(t, err)
		_, _, err = svc.CreateBatch(ctx, "student-2", filesOf(1))
		require.NoError(t, err)

		removed, err := svc.DeleteByStudent(ctx, "student-1")
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		total, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, total)

		// Os arquivos não são tocados; os do estudante removido ficam órfãos
		assert.Len(t, store.blobs, 3)
	})

	t.Run("estudante obrigatório", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.DeleteByStudent(ctx, "")
		assert.ErrorIs(t, err, certificate.ErrMissingStudentID)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()
	base := time.Now().Add(-24 * time.Hour)

	t.Run("paginação ordenada do mais recente para o mais antigo", func(t *testing.T) {
		svc, repo, _ := newTestService()
		seedCertificates(t, repo, 15, "student-1", base)

		page2, err := svc.List(ctx, 2, 10)
		require.NoError(t, err)
		assert.Equal(t, 15, page2.Total)
		assert.Equal(t, 2, page2.Page)
		assert.Equal(t, 10, page2.PageSize)
		require.Len(t, page2.Certificates, 5)

		// Concatenar as páginas reproduz a coleção completa sem lacunas
		page1, err := svc.List(ctx, 1, 10)
		require.NoError(t, err)
		require.Len(t, page1.Certificates, 10)

		all := append(page1.Certificates, page2.Certificates...)
		seen := map[string]bool{}
		for i, cert := range all {
			assert.False(t, seen[cert.ID], "certificado duplicado entre páginas")
			seen[cert.ID] = true
			if i > 0 {
				assert.False(t, all[i-1].CreatedAt.Before(cert.CreatedAt), "ordem decrescente violada")
			}
		}
		assert.Len(t, seen, 15)
	})

	t.Run("valores ausentes caem nos padrões", func(t *testing.T) {
		svc, repo, _ := newTestService()
		seedCertificates(t, repo, 12, "student-1", base)

		result, err := svc.List(ctx, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Page)
		assert.Equal(t, 10, result.PageSize)
		assert.Len(t, result.Certificates, 10)
	})
}

func TestSearchByStudent(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()
	base := time.Now().Add(-time.Hour)
	seedCertificates(t, repo, 2, "student-1", base)
	seedCertificates(t, repo, 3, "student-2", base)

	certs, err := svc.SearchByStudent(ctx, "student-2")
	require.NoError(t, err)
	require.Len(t, certs, 3)
	for _, cert := range certs {
		assert.Equal(t, "student-2", cert.StudentID)
	}

	_, err = svc.SearchByStudent(ctx, "")
	assert.ErrorIs(t, err, certificate.ErrMissingStudentID)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()
	base := time.Now().Add(-time.Hour)
	seedCertificates(t, repo, 2, "student-1", base)
	seedCertificates(t, repo, 3, "student-2", base)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalCertificates)
	assert.Equal(t, 2, stats.TotalStudents)
}

func TestDailyTrend(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()

	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)
	outOfWindow := now.AddDate(0, 0, -10)

	seedAt := func(id string, at time.Time) {
		require.NoError(t, repo.Create(ctx, &certificate.Certificate{
			ID: id, StudentID: "student-1",
			CertificateURL: "https://files.example/" + id,
			PublicID:       id, CreatedAt: at,
		}))
	}
	seedAt("today-1", now)
	seedAt("today-2", now)
	seedAt("yesterday-1", yesterday)
	seedAt("old-1", outOfWindow)

	points, err := svc.DailyTrend(ctx)
	require.NoError(t, err)

	// Apenas os dias com certificados dentro da janela aparecem, em ordem
	// crescente, e a soma dos baldes cobre todos os registros da janela
	require.Len(t, points, 2)
	assert.Equal(t, yesterday.Format("2006-01-02"), points[0].Label)
	assert.Equal(t, 1, points[0].Count)
	assert.Equal(t, now.Format("2006-01-02"), points[1].Label)
	assert.Equal(t, 2, points[1].Count)
	assert.Equal(t, 3, points[0].Count+points[1].Count)
}

func TestMonthlyTrend(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 12, 0, 0, 0, now.Location())
	previousMonth := monthStart.AddDate(0, -1, 0)
	outOfWindow := monthStart.AddDate(0, -13, 0)

	seedAt := func(id string, at time.Time) {
		require.NoError(t, repo.Create(ctx, &certificate.Certificate{
			ID: id, StudentID: "student-1",
			CertificateURL: "https://files.example/" + id,
			PublicID:       id, CreatedAt: at,
		}))
	}
	seedAt("current-1", monthStart)
	seedAt("current-2", monthStart)
	seedAt("previous-1", previousMonth)
	seedAt("old-1", outOfWindow)

	points, err := svc.MonthlyTrend(ctx)
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, fmt.Sprintf("%d-%d", int(previousMonth.Month()), previousMonth.Year()), points[0].Label)
	assert.Equal(t, 1, points[0].Count)
	assert.Equal(t, fmt.Sprintf("%d-%d", int(monthStart.Month()), monthStart.Year()), points[1].Label)
	assert.Equal(t, 2, points[1].Count)
}
