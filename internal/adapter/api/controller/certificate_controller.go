package controller

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/certificados-api/internal/adapter/api/dto"
	"github.com/hugohenrick/certificados-api/internal/domain/certificate"
	"github.com/hugohenrick/certificados-api/pkg/logger"
)

// CertificateController manipula as requisições relacionadas a certificados
type CertificateController struct {
	service *certificate.Service
	logger  logger.Logger
}

// NewCertificateController cria uma nova instância de CertificateController
func NewCertificateController(service *certificate.Service, logger logger.Logger) *CertificateController {
	return &CertificateController{
		service: service,
		logger:  logger,
	}
}

// isInvalidInput verifica se o erro é de validação de entrada
func isInvalidInput(err error) bool {
	return errors.Is(err, certificate.ErrMissingStudentID) ||
		errors.Is(err, certificate.ErrNoFiles) ||
		errors.Is(err, certificate.ErrTooManyFiles) ||
		errors.Is(err, certificate.ErrNothingToUpdate)
}

// openUploads abre os arquivos do formulário multipart na ordem recebida
func openUploads(headers []*multipart.FileHeader) ([]certificate.File, func(), error) {
	files := make([]certificate.File, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))

	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("erro ao abrir o arquivo %q: %w", header.Filename, err)
		}
		opened = append(opened, src)
		files = append(files, certificate.File{Name: header.Filename, Content: src})
	}

	return files, closeAll, nil
}

// @Summary Listar certificados
// @Description Lista os certificados com paginação, do mais recente para o mais antigo
// @Tags Certificados
// @Produce json
// @Param page query int false "Número da página (padrão: 1)"
// @Param limit query int false "Tamanho da página (padrão: 10)"
// @Success 200 {object} dto.CertificateListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /certificates [get]
func (c *CertificateController) List(ctx *gin.Context) {
	// Valores ausentes ou não numéricos caem nos padrões, nunca em erro
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	result, err := c.service.List(ctx.Request.Context(), page, limit)
	if err != nil {
		c.logger.Error("erro ao listar certificados", "error", err.Error())
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao listar certificados", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.NewCertificateListResponse(result.Certificates, result.Total, result.Page, result.PageSize))
}

// @Summary Criar certificados
// @Description Recebe até 10 arquivos no campo "certificate" e cria um certificado por arquivo para o estudante informado
// @Tags Certificados
// @Accept multipart/form-data
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param studentId formData string true "ID do estudante"
// @Param certificate formData file true "Arquivos de certificado"
// @Success 201 {object} dto.CertificateBatchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /certificates [post]
func (c *CertificateController) Create(ctx *gin.Context) {
	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "erro ao processar formulário", err.Error()))
		return
	}

	studentID := ctx.PostForm("studentId")
	headers := form.File["certificate"]

	files, closeFiles, err := openUploads(headers)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "erro ao ler arquivos", err.Error()))
		return
	}
	defer closeFiles()

	created, failures, err := c.service.CreateBatch(ctx.Request.Context(), studentID, files)
	if err != nil {
		if isInvalidInput(err) {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
			return
		}
		c.logger.Error("erro ao criar certificados", "error", err.Error())
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao criar certificados", err.Error()))
		return
	}

	if len(failures) > 0 && len(created) == 0 {
		c.logger.Error("nenhum certificado criado no lote", "failures", len(failures))
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao criar certificados", failures[0].Reason))
		return
	}

	message := "certificados criados com sucesso"
	if len(failures) > 0 {
		c.logger.Warn("lote de certificados criado parcialmente", "created", len(created), "failed", len(failures))
		message = fmt.Sprintf("%d de %d arquivos processados; os demais falharam", len(created), len(files))
	}

	ctx.JSON(http.StatusCreated, dto.CertificateBatchResponse{
		Certificates: dto.NewCertificateResponses(created),
		Failures:     failures,
		Message:      message,
	})
}

// @Summary Buscar certificados por estudante
// @Description Retorna todos os certificados do estudante informado
// @Tags Certificados
// @Produce json
// @Param studentId query string true "ID do estudante"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /certificates/search [get]
func (c *CertificateController) Search(ctx *gin.Context) {
	studentID := ctx.Query("studentId")

	certs, err := c.service.SearchByStudent(ctx.Request.Context(), studentID)
	if err != nil {
		if isInvalidInput(err) {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
			return
		}
		c.logger.Error("erro ao buscar certificados", "student_id", studentID, "error", err.Error())
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao buscar certificados", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"certificates": dto.NewCertificateResponses(certs)})
}

// @Summary Baixar certificado
// @Description Redireciona para a URL do arquivo do certificado
// @Tags Certificados
// @Param id path string true "ID do certificado"
// @Success 302
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /certificates/download/{id} [get]
func (c *CertificateController) Download(ctx *gin.Context) {
	id := ctx.Param("id")

	cert, err := c.service.Get(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, certificate.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "certificado não encontrado", err.Error()))
			return
		}
		c.logger.Error("erro ao buscar certificado", "id", id, "error", err.Error())
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao buscar certificado", err.Error()))
		return
	}

	ctx.Redirect(http.StatusFound, cert.CertificateURL)
}

// @Summary Substituir certificado
// @Description Troca o arquivo e/ou o estudante de um certificado existente
// @Tags Certificados
// @Accept multipart/form-data
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID do certificado"
// @Param studentId formData string false "Novo ID de estudante"
// @Param certificate formData file false "Novo arquivo de certificado"
// @Success 200 {object} dto.CertificateResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /certificates/{id} [put]
func (c *CertificateController) Replace(ctx *gin.Context) {
	id := ctx.Param("id")
	newStudentID := ctx.PostForm("studentId")

	var file *certificate.File
	header, err := ctx.FormFile("certificate")
	if err == nil {
		src, err := header.Open()
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "erro ao abrir arquivo do certificado", err.Error()))
			return
		}
		defer src.Close()
		file = &certificate.File{Name: header.Filename, Content: src}
	}

	cert, err := c.service.Replace(ctx.Request.Context(), id, file, newStudentID)
	if err != nil {
		switch {
		case errors.Is(err, certificate.ErrNotFound):
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "certificado não encontrado", err.Error()))
		case isInvalidInput(err):
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
		default:
			c.logger.Error("erro ao substituir certificado", "id", id, "error", err.Error())
			ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao substituir certificado", err.Error()))
		}
		return
	}

	ctx.JSON(http.StatusOK, dto.NewCertificateResponse(cert))
}

// @Summary Excluir certificado
// @Description Remove o certificado e o arquivo correspondente; se o arquivo não puder ser removido o registro é preservado
// @Tags Certificados
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "ID do certificado"
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /certificates/{id} [delete]
func (c *CertificateController) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := c.service.DeleteOne(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, certificate.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "certificado não encontrado", err.Error()))
			return
		}
		c.logger.Error("erro ao excluir certificado", "id", id, "error", err.Error())
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao excluir certificado", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("certificado excluído com sucesso", nil))
}

// @Summary Excluir todos os certificados
// @Description Remove todos os certificados; arquivos que não puderem ser excluídos são reportados e os registros são removidos mesmo assim
// @Tags Certificados
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} dto.BulkDeleteResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /certificates [delete]
func (c *CertificateController) DeleteAll(ctx *gin.Context) {
	report, err := c.service.DeleteAll(ctx.Request.Context())
	if err != nil {
		c.logger.Error("erro ao excluir certificados", "error", err.Error())
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao excluir certificados", err.Error()))
		return
	}

	message := "todos os certificados foram excluídos"
	if report.Failed > 0 {
		c.logger.Warn("exclusão em massa com falhas de arquivo", "attempted", report.Attempted, "failed", report.Failed)
		message = fmt.Sprintf("registros removidos; %d arquivos não puderam ser excluídos e permanecem no armazenamento", report.Failed)
	}

	ctx.JSON(http.StatusOK, dto.BulkDeleteResponse{
		Message:        message,
		Attempted:      report.Attempted,
		Deleted:        report.Deleted,
		Failed:         report.Failed,
		Failures:       report.Failures,
		RecordsRemoved: report.RecordsRemoved,
	})
}

// @Summary Excluir certificados de um estudante
// @Description Remove apenas os registros do estudante; os arquivos permanecem no armazenamento externo
// @Tags Certificados
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param studentId path string true "ID do estudante"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /certificates/student/{studentId} [delete]
func (c *CertificateController) DeleteByStudent(ctx *gin.Context) {
	studentID := ctx.Param("studentId")

	removed, err := c.service.DeleteByStudent(ctx.Request.Context(), studentID)
	if err != nil {
		if isInvalidInput(err) {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "dados inválidos", err.Error()))
			return
		}
		c.logger.Error("erro ao excluir certificados do estudante", "student_id", studentID, "error", err.Error())
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao excluir certificados do estudante", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(
		fmt.Sprintf("%d registros removidos; os arquivos correspondentes permanecem no armazenamento externo", removed),
		gin.H{"records_removed": removed},
	))
}

// @Summary Estatísticas de certificados
// @Description Retorna o total de certificados e de estudantes distintos
// @Tags Certificados
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} dto.StatsResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /certificates/stats [get]
func (c *CertificateController) Stats(ctx *gin.Context) {
	stats, err := c.service.Stats(ctx.Request.Context())
	if err != nil {
		c.logger.Error("erro ao calcular estatísticas", "error", err.Error())
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao calcular estatísticas", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.StatsResponse{
		TotalCertificates: stats.TotalCertificates,
		TotalStudents:     stats.TotalStudents,
	})
}

// @Summary Tendência diária
// @Description Certificados criados por dia nos últimos 7 dias; dias sem certificados não aparecem
// @Tags Certificados
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {array} dto.DailyTrendEntry
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /certificates/trends/daily [get]
func (c *CertificateController) DailyTrend(ctx *gin.Context) {
	points, err := c.service.DailyTrend(ctx.Request.Context())
	if err != nil {
		c.logger.Error("erro ao agregar tendência diária", "error", err.Error())
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao agregar tendência diária", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"trend": dto.NewDailyTrendEntries(points)})
}

// @Summary Tendência mensal
// @Description Certificados criados por mês nos últimos 12 meses; meses sem certificados não aparecem
// @Tags Certificados
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {array} dto.MonthlyTrendEntry
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /certificates/trends/monthly [get]
func (c *CertificateController) MonthlyTrend(ctx *gin.Context) {
	points, err := c.service.MonthlyTrend(ctx.Request.Context())
	if err != nil {
		c.logger.Error("erro ao agregar tendência mensal", "error", err.Error())
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "erro ao agregar tendência mensal", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"trend": dto.NewMonthlyTrendEntries(points)})
}

// @Summary Verificar armazenamento
// @Description Verifica a conectividade com o serviço externo de armazenamento de arquivos
// @Tags Certificados
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /certificates/storage/health [get]
func (c *CertificateController) StorageHealth(ctx *gin.Context) {
	if err := c.service.CheckStorage(ctx.Request.Context()); err != nil {
		c.logger.Error("armazenamento externo indisponível", "error", err.Error())
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "armazenamento externo indisponível", err.Error()))
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("armazenamento externo disponível", nil))
}
