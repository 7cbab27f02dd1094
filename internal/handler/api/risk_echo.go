package api

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"RiskRegime/internal/domain/models"
	"RiskRegime/internal/usecase"
	xhttp "RiskRegime/pkg/http"
	xlogger "RiskRegime/pkg/logger"
)

// Analyzer is the inference surface the HTTP adapter needs.
type Analyzer interface {
	AnalyzePeriod(ctx context.Context, symbol, period string) (*models.AnalysisResult, error)
	Ready() bool
}

// RiskEchoHandler serves risk assessments over HTTP.
type RiskEchoHandler struct {
	logger   *xlogger.Logger
	analyzer Analyzer
}

func NewRiskEchoHandler(logger *xlogger.Logger, analyzer Analyzer) *RiskEchoHandler {
	return &RiskEchoHandler{logger: logger.Component("risk_handler"), analyzer: analyzer}
}

func (h *RiskEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/health", h.Health)
	g.GET("/v1/analyze/:symbol", h.Analyze)
}

type healthView struct {
	Status     string `json:"status"`
	ModelReady bool   `json:"model_ready"`
}

func (h *RiskEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, healthView{Status: "ok", ModelReady: h.analyzer.Ready()})
}

func (h *RiskEchoHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.AnalyzePeriod(c.Request().Context(), req.Symbol, req.Period)
	if err != nil {
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res.View())
}

// toAppError maps an analysis failure to a status code. Only the generic
// AnalysisError message is exposed.
func toAppError(err error) *xhttp.AppError {
	var ae *usecase.AnalysisError
	if !errors.As(err, &ae) {
		return xhttp.InternalError("analysis failed")
	}
	switch ae.Code {
	case usecase.CodeInvalidSymbol:
		return xhttp.BadRequestError(ae.Error()).WithParam("symbol", ae.Symbol)
	case usecase.CodeNoData:
		return xhttp.NotFoundError(ae.Error()).WithParam("symbol", ae.Symbol)
	case usecase.CodeInsufficientHistory:
		return xhttp.UnprocessableError("ERR_INSUFFICIENT_HISTORY", ae.Error()).WithParam("symbol", ae.Symbol)
	case usecase.CodeModelUnavailable:
		return xhttp.UnavailableError("ERR_MODEL_UNAVAILABLE", ae.Error())
	default:
		return xhttp.InternalError(ae.Error())
	}
}
