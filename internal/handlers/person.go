package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prefeitura-rio/app-matriculas/internal/logging"
	"github.com/prefeitura-rio/app-matriculas/internal/models"
	"github.com/prefeitura-rio/app-matriculas/internal/services"
	"github.com/prefeitura-rio/app-matriculas/internal/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PersonService is the person registration API used by the handlers
type PersonService interface {
	Create(ctx context.Context, tenantID string, req *models.PersonRequest) (*models.PersonResponse, error)
	Update(ctx context.Context, id string, req *models.PersonRequest) (*models.PersonResponse, error)
	Get(ctx context.Context, id string) (*models.PersonResponse, error)
	List(ctx context.Context, tenantID string, page, perPage int) (*models.PersonListResponse, error)
	Delete(ctx context.Context, id string) error
}

// PersonHandlers handles person registration endpoints
type PersonHandlers struct {
	logger  *logging.SafeLogger
	service PersonService
}

// NewPersonHandlers creates a new person handlers instance
func NewPersonHandlers(logger *logging.SafeLogger, service PersonService) *PersonHandlers {
	return &PersonHandlers{
		logger:  logger,
		service: service,
	}
}

// CreatePerson godoc
// @Summary Cadastrar pessoa
// @Description Cadastra um aluno, responsável ou funcionário na escola. O CPF é opcional, aceito com ou sem máscara e armazenado apenas com dígitos; se informado, deve ser válido e não pode pertencer a outra pessoa.
// @Tags people
// @Accept json
// @Produce json
// @Param tenant_id path string true "ID da escola"
// @Param person body models.PersonRequest true "Dados da pessoa"
// @Success 201 {object} models.PersonResponse "Pessoa cadastrada com sucesso"
// @Failure 400 {object} ValidationErrorResponse "Dados inválidos"
// @Failure 409 {object} ConflictErrorResponse "CPF já cadastrado"
// @Failure 500 {object} ErrorResponse "Erro interno do servidor"
// @Router /tenants/{tenant_id}/people [post]
func (h *PersonHandlers) CreatePerson(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "CreatePerson")
	defer span.End()

	tenantID := c.Param("tenant_id")
	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("operation", "create_person"),
	)

	var req models.PersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Dados inválidos: " + err.Error()})
		return
	}

	person, err := h.service.Create(ctx, tenantID, &req)
	if err != nil {
		utils.RecordErrorInSpan(span, err)
		respondWithError(c, h.logger, "create_person", err)
		return
	}

	h.logger.Debug("CreatePerson completed",
		zap.String("tenant_id", tenantID),
		zap.String("person_id", person.ID))
	c.JSON(http.StatusCreated, person)
}

// ListPeople godoc
// @Summary Listar pessoas da escola
// @Description Lista paginada das pessoas cadastradas na escola, das mais recentes para as mais antigas.
// @Tags people
// @Produce json
// @Param tenant_id path string true "ID da escola"
// @Param page query int false "Número da página (padrão: 1)" minimum(1)
// @Param per_page query int false "Itens por página (padrão: 20, máximo: 100)" minimum(1) maximum(100)
// @Success 200 {object} models.PersonListResponse "Lista paginada de pessoas"
// @Failure 400 {object} ErrorResponse "Parâmetros de paginação inválidos"
// @Failure 500 {object} ErrorResponse "Erro interno do servidor"
// @Router /tenants/{tenant_id}/people [get]
func (h *PersonHandlers) ListPeople(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ListPeople")
	defer span.End()

	tenantID := c.Param("tenant_id")

	page, perPage, err := services.ValidatePaginationParams(c.Query("page"), c.Query("per_page"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.Int("page", page),
		attribute.Int("per_page", perPage),
	)

	people, err := h.service.List(ctx, tenantID, page, perPage)
	if err != nil {
		utils.RecordErrorInSpan(span, err)
		respondWithError(c, h.logger, "list_people", err)
		return
	}

	c.JSON(http.StatusOK, people)
}

// GetPerson godoc
// @Summary Obter pessoa
// @Description Obtém uma pessoa pelo ID, com CPF formatado, idade e link de WhatsApp quando disponíveis.
// @Tags people
// @Produce json
// @Param id path string true "ID da pessoa"
// @Success 200 {object} models.PersonResponse
// @Failure 400 {object} ErrorResponse "ID inválido"
// @Failure 404 {object} ErrorResponse "Pessoa não encontrada"
// @Failure 500 {object} ErrorResponse "Erro interno do servidor"
// @Router /people/{id} [get]
func (h *PersonHandlers) GetPerson(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "GetPerson")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("person_id", id))

	person, err := h.service.Get(ctx, id)
	if err != nil {
		utils.RecordErrorInSpan(span, err)
		respondWithError(c, h.logger, "get_person", err)
		return
	}

	c.JSON(http.StatusOK, person)
}

// UpdatePerson godoc
// @Summary Atualizar pessoa
// @Description Substitui os dados de uma pessoa. A pessoa pode manter o próprio CPF; um CPF de outra pessoa é recusado.
// @Tags people
// @Accept json
// @Produce json
// @Param id path string true "ID da pessoa"
// @Param person body models.PersonRequest true "Dados da pessoa"
// @Success 200 {object} models.PersonResponse
// @Failure 400 {object} ValidationErrorResponse "Dados inválidos"
// @Failure 404 {object} ErrorResponse "Pessoa não encontrada"
// @Failure 409 {object} ConflictErrorResponse "CPF já cadastrado"
// @Failure 500 {object} ErrorResponse "Erro interno do servidor"
// @Router /people/{id} [put]
func (h *PersonHandlers) UpdatePerson(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "UpdatePerson")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(
		attribute.String("person_id", id),
		attribute.String("operation", "update_person"),
	)

	var req models.PersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Dados inválidos: " + err.Error()})
		return
	}

	person, err := h.service.Update(ctx, id, &req)
	if err != nil {
		utils.RecordErrorInSpan(span, err)
		respondWithError(c, h.logger, "update_person", err)
		return
	}

	c.JSON(http.StatusOK, person)
}

// DeletePerson godoc
// @Summary Remover pessoa
// @Description Remove uma pessoa. O CPF fica livre para outro cadastro.
// @Tags people
// @Param id path string true "ID da pessoa"
// @Success 204 "Pessoa removida"
// @Failure 400 {object} ErrorResponse "ID inválido"
// @Failure 404 {object} ErrorResponse "Pessoa não encontrada"
// @Failure 500 {object} ErrorResponse "Erro interno do servidor"
// @Router /people/{id} [delete]
func (h *PersonHandlers) DeletePerson(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "DeletePerson")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("person_id", id))

	if err := h.service.Delete(ctx, id); err != nil {
		utils.RecordErrorInSpan(span, err)
		respondWithError(c, h.logger, "delete_person", err)
		return
	}

	c.Status(http.StatusNoContent)
}
