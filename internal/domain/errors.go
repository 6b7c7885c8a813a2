package domain

import "errors"

// Erros de domínio (sem dependências externas).
// Todo caminho de mutação devolve um destes ao chamador; nada é engolido em log.
var (
	ErrNotFound           = errors.New("recurso não encontrado")
	ErrUserNotFound       = errors.New("usuário não encontrado")
	ErrValidation         = errors.New("entrada inválida")
	ErrGuardViolation     = errors.New("transição de status inválida")
	ErrUnauthorized       = errors.New("não autorizado")
	ErrForbidden          = errors.New("acesso negado")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrProductNotFound    = errors.New("produto não encontrado na Sankhya")
	ErrSankhyaUnavailable = errors.New("Sankhya indisponível")
	ErrSankhyaAuth        = errors.New("falha de autenticação na Sankhya")
	ErrCavaleteLimit      = errors.New("limite de 30 cavaletes atingido")
	ErrNoEligibleSlots    = errors.New("nenhum slot elegível para a operação")
)
