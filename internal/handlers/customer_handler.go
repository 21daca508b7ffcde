package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"digi3/internal/models"
	"digi3/internal/services"
)

type CustomerHandler struct {
	Service *services.CustomerService
}

type customerRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (r customerRequest) toModel(id int64) *models.Customer {
	return &models.Customer{ID: id, Name: r.Name, Email: r.Email, Phone: r.Phone, Address: r.Address}
}

func NewCustomerHandler(service *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{Service: service}
}

// @Summary      Créer un client
// @Tags         Customers
// @Accept       json
// @Produce      json
// @Param        customer  body      customerRequest  true  "Client"
// @Success      201       {object}  models.Customer
// @Router       /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	customer := req.toModel(0)
	if err := h.Service.Create(c.Request.Context(), actorFrom(c), customer); err != nil {
		respondError(c, "[customer][create]", err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// @Summary      Liste des clients
// @Tags         Customers
// @Produce      json
// @Param        q       query  string  false  "Recherche par nom"
// @Param        limit   query  int     false  "Limite"
// @Param        offset  query  int     false  "Décalage"
// @Success      200     {array}  models.Customer
// @Router       /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.Service.List(c.Request.Context(), c.Query("q"), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, "[customer][list]", err)
		return
	}
	if customers == nil {
		customers = []*models.Customer{}
	}
	c.JSON(http.StatusOK, customers)
}

// @Summary      Détail d'un client
// @Tags         Customers
// @Produce      json
// @Param        id   path      int  true  "Customer ID"
// @Success      200  {object}  models.Customer
// @Router       /customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	customer, err := h.Service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, "[customer][get]", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// @Summary      Modifier un client
// @Tags         Customers
// @Accept       json
// @Produce      json
// @Param        id        path      int              true  "Customer ID"
// @Param        customer  body      customerRequest  true  "Client"
// @Success      200       {object}  models.Customer
// @Router       /customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	customer := req.toModel(id)
	if err := h.Service.Update(c.Request.Context(), actorFrom(c), customer); err != nil {
		respondError(c, "[customer][update]", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// @Summary      Supprimer un client
// @Tags         Customers
// @Param        id   path  int  true  "Customer ID"
// @Success      200  {object}  map[string]string
// @Router       /customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, "[customer][delete]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "customer deleted"})
}
