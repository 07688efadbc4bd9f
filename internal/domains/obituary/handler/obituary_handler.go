package handler

import (
	"net/http"

	"memorial-backend/internal/domains/obituary"
	"memorial-backend/internal/shared/response"
	"memorial-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ObituaryHandler struct {
	service obituary.Service
}

func NewObituaryHandler(svc obituary.Service) *ObituaryHandler {
	return &ObituaryHandler{service: svc}
}

// ========== CREATE: POST /v1/obituaries ==========
func (h *ObituaryHandler) Create(c *gin.Context) {
	var req obituary.CreateObituaryReq
	if err := c.BindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		status := obituary.GetHTTPStatusCode(err)
		if status == http.StatusInternalServerError {
			logger.Error("Create obituary failed", err)
			response.InternalServerError(c, "failed to create obituary")
			return
		}
		response.ErrorResponse(c, status, http.StatusText(status), err.Error())
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// ========== READ: GET /v1/obituaries/:slug ==========
// A retired slug answers 301 with the canonical location so old links
// keep resolving; the redirect table is collapsed to one hop, so a
// single lookup suffices.
func (h *ObituaryHandler) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")

	resp, err := h.service.GetBySlug(c.Request.Context(), slug)
	if err == nil {
		response.Success(c, http.StatusOK, resp)
		return
	}

	if obituary.GetHTTPStatusCode(err) == http.StatusNotFound {
		target, found, rerr := h.service.Resolve(c.Request.Context(), slug)
		if rerr != nil {
			logger.Error("Redirect lookup failed", rerr)
			response.InternalServerError(c, "failed to resolve slug")
			return
		}
		if found {
			c.Redirect(http.StatusMovedPermanently, "/api/v1/obituaries/"+target)
			return
		}
		response.NotFound(c, "obituary not found")
		return
	}

	logger.Error("Get obituary failed", err)
	response.InternalServerError(c, "failed to fetch obituary")
}
