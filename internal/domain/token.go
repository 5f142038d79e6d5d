package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
)

// Claims são os dados carregados pelos tokens de serviço que autenticam
// os operadores da API. Não há cadastro de usuários finais; os tokens são
// emitidos fora do sistema e validados pelo middleware.
type Claims struct {
	Subject string `json:"sub_name"`
	Role    Role   `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
