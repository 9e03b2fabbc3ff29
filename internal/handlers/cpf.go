package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-matriculas/internal/services"
)

// InspectCPF godoc
// @Summary Verificar CPF
// @Description Normaliza um CPF digitado em qualquer formato, devolve a forma canônica, a forma mascarada e se os dígitos verificadores conferem. Não consulta o cadastro.
// @Tags cpf
// @Produce json
// @Param cpf path string true "CPF com ou sem máscara"
// @Success 200 {object} models.CPFInspection
// @Router /cpf/{cpf} [get]
func InspectCPF(c *gin.Context) {
	c.JSON(http.StatusOK, services.InspectCPF(c.Param("cpf")))
}
