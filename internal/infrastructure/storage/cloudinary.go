package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/hugohenrick/certificados-api/internal/domain/certificate"
)

// ErrMissingCloudinaryURL indica que a variável CLOUDINARY_URL não foi configurada
var ErrMissingCloudinaryURL = errors.New("variável CLOUDINARY_URL não configurada")

// CloudinaryStore implementa certificate.ArtifactStore sobre o Cloudinary
type CloudinaryStore struct {
	client *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore cria o cliente do Cloudinary a partir das variáveis de
// ambiente CLOUDINARY_URL e CLOUDINARY_FOLDER
func NewCloudinaryStore() (*CloudinaryStore, error) {
	url := os.Getenv("CLOUDINARY_URL")
	if url == "" {
		return nil, ErrMissingCloudinaryURL
	}

	client, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("falha ao configurar o Cloudinary: %w", err)
	}

	folder := os.Getenv("CLOUDINARY_FOLDER")
	if folder == "" {
		folder = "certificates"
	}

	return &CloudinaryStore{
		client: client,
		folder: folder,
	}, nil
}

// Upload envia o arquivo para o Cloudinary e retorna a URL pública e o public ID
func (s *CloudinaryStore) Upload(ctx context.Context, file io.Reader, filename string) (*certificate.UploadResult, error) {
	res, err := s.client.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       s.folder,
		ResourceType: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("falha no upload de %q para o Cloudinary: %w", filename, err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("Cloudinary recusou o upload de %q: %s", filename, res.Error.Message)
	}

	return &certificate.UploadResult{
		URL:      res.SecureURL,
		PublicID: res.PublicID,
	}, nil
}

// Delete remove o arquivo identificado pelo public ID. Um arquivo que já não
// existe no Cloudinary é tratado como removido com sucesso, o que torna a
// operação segura para chamadas repetidas sobre o mesmo public ID
func (s *CloudinaryStore) Delete(ctx context.Context, publicID string) error {
	res, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("falha ao excluir %q no Cloudinary: %w", publicID, err)
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("Cloudinary recusou a exclusão de %q: %s", publicID, res.Result)
	}

	return nil
}

// Ping verifica a disponibilidade do Cloudinary
func (s *CloudinaryStore) Ping(ctx context.Context) error {
	res, err := s.client.Admin.Ping(ctx)
	if err != nil {
		return fmt.Errorf("falha ao verificar o Cloudinary: %w", err)
	}
	if res.Status != "ok" {
		return fmt.Errorf("Cloudinary indisponível: %s", res.Status)
	}

	return nil
}
