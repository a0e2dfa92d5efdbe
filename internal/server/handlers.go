package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"yashubustudio/hccmapper/hcc"
)

type handler struct {
	pipeline Pipeline
}

type textRequest struct {
	Text         string `json:"text"`
	DocumentName string `json:"document_name"`
}

type classifyRequest struct {
	Terms []hcc.CandidateTerm `json:"terms"`
}

type extractResponse struct {
	RunID string              `json:"run_id"`
	Terms []hcc.CandidateTerm `json:"terms"`
}

type classifyResponse struct {
	Results []hcc.ClassifiedResult `json:"results"`
}

type healthResponse struct {
	Status          string `json:"status"`
	CodebookEntries int    `json:"codebook_entries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", CodebookEntries: h.pipeline.Codebook().Len()})
}

func bindText(c echo.Context) (textRequest, error) {
	var req textRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return req, echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}
	return req, nil
}

func (h *handler) extract(c echo.Context) error {
	req, err := bindText(c)
	if err != nil {
		return err
	}
	terms, err := h.pipeline.Extract(c.Request().Context(), req.Text)
	if err != nil {
		return pipelineError(err)
	}
	return c.JSON(http.StatusOK, extractResponse{RunID: uuid.NewString(), Terms: terms})
}

func (h *handler) process(c echo.Context) error {
	req, err := bindText(c)
	if err != nil {
		return err
	}
	name := req.DocumentName
	if name == "" {
		name = "document"
	}
	report, err := h.pipeline.Process(c.Request().Context(), name, req.Text)
	if err != nil {
		return pipelineError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (h *handler) classify(c echo.Context) error {
	var req classifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	results, err := h.pipeline.ClassifyTerms(c.Request().Context(), req.Terms)
	if err != nil {
		return pipelineError(err)
	}
	return c.JSON(http.StatusOK, classifyResponse{Results: results})
}

func pipelineError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return echo.NewHTTPError(http.StatusGatewayTimeout, "request timed out")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
