package controllers

import (
	"creditbank/middleware"
	"creditbank/services"
	"creditbank/utils"
	"encoding/json"
	"errors"
	"net/http"
)

// CreditController обрабатывает запросы API, связанные с кредитными продуктами и заявками
type CreditController struct {
	products     *services.ProductService
	applications *services.CreditApplicationService
	metrics      *utils.Metrics
}

// NewCreditController создает новый экземпляр CreditController
func NewCreditController(products *services.ProductService, applications *services.CreditApplicationService, metrics *utils.Metrics) *CreditController {
	return &CreditController{
		products:     products,
		applications: applications,
		metrics:      metrics,
	}
}

// GetProducts возвращает список кредитных продуктов
func (c *CreditController) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := c.products.List(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct возвращает кредитный продукт по ID
func (c *CreditController) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid product ID", http.StatusBadRequest)
		return
	}

	product, err := c.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// CreateApplication обрабатывает запрос на подачу заявки
func (c *CreditController) CreateApplication(w http.ResponseWriter, r *http.Request) {
	// Получаем ID пользователя из контекста
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var form services.ApplicationForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	app, err := c.applications.Submit(r.Context(), userID, form)
	if err != nil {
		var fieldErrors services.FieldErrors
		if errors.As(err, &fieldErrors) {
			writeFieldErrors(w, fieldErrors)
			return
		}
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, services.ToApplicationDTO(app))
}

// GetApplications возвращает заявки текущего пользователя
func (c *CreditController) GetApplications(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	apps, err := c.applications.ListByUser(r.Context(), userID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	dtos := make([]services.ApplicationDTO, 0, len(apps))
	for i := range apps {
		dtos = append(dtos, services.ToApplicationDTO(&apps[i]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetApplication возвращает заявку, если она принадлежит текущему пользователю
func (c *CreditController) GetApplication(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathID(r)
	if !ok {
		http.Error(w, "Invalid application ID", http.StatusBadRequest)
		return
	}

	app, err := c.applications.GetForUser(r.Context(), id, userID)
	switch {
	case errors.Is(err, services.ErrApplicationNotFound):
		http.Error(w, "Application not found", http.StatusNotFound)
		return
	case errors.Is(err, services.ErrAccessDenied):
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	case err != nil:
		internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, services.ToApplicationDTO(app))
}

// GetMetrics возвращает снимок метрик приложения
func (c *CreditController) GetMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.metrics.GetMetricsSnapshot())
}
