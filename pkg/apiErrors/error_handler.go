package apiErrors

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Erros de autenticação
	ErrInvalidToken          = "AUTH_006" // Token inválido
	ErrInsufficientPrivilege = "AUTH_008" // Privilégios insuficientes

	// Erros de validação
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrInvalidFormat       = "VAL_003" // Formato de dados inválido

	// Erros do servidor
	ErrInternalServer    = "SRV_001" // Erro interno do servidor
	ErrDatabaseOperation = "SRV_002" // Erro de operação de banco de dados
	ErrServiceDisabled   = "SRV_003" // Funcionalidade desabilitada por configuração
	ErrNotFound          = "SRV_004" // Rota inexistente
	ErrMethodNotAllowed  = "SRV_005" // Método não permitido
)

// Mapeamento de códigos de erro para status HTTP
var httpStatusMap = map[string]int{
	ErrInvalidToken:          http.StatusUnauthorized,
	ErrInsufficientPrivilege: http.StatusForbidden,
	ErrInvalidRequest:        http.StatusBadRequest,
	ErrMissingRequiredData:   http.StatusBadRequest,
	ErrInvalidFormat:         http.StatusBadRequest,
	ErrInternalServer:        http.StatusInternalServerError,
	ErrDatabaseOperation:     http.StatusInternalServerError,
	ErrServiceDisabled:       http.StatusServiceUnavailable,
	ErrNotFound:              http.StatusNotFound,
	ErrMethodNotAllowed:      http.StatusMethodNotAllowed,
}

// APIError é o envelope de erro devolvido ao dashboard
type APIError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// APIResponse é o envelope de sucesso devolvido ao dashboard
type APIResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// StatusFor retorna o status HTTP associado ao código de erro
func StatusFor(code string) int {
	status, exists := httpStatusMap[code]
	if !exists {
		return http.StatusInternalServerError
	}
	return status
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(code))
	_ = json.NewEncoder(w).Encode(APIError{
		Success: false,
		Error:   message,
		Code:    code,
	})
}

// WriteSuccess escreve o envelope de sucesso com status 200
func WriteSuccess(w http.ResponseWriter, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	return json.NewEncoder(w).Encode(APIResponse{
		Success: true,
		Data:    data,
	})
}
