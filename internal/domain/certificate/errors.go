package certificate

import "errors"

// Erros específicos
var (
	ErrNotFound         = errors.New("certificado não encontrado")
	ErrMissingStudentID = errors.New("student ID é obrigatório")
	ErrNoFiles          = errors.New("nenhum arquivo de certificado enviado")
	ErrTooManyFiles     = errors.New("máximo de 10 arquivos por requisição")
	ErrNothingToUpdate  = errors.New("nenhum dado para atualizar")
)
