package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vivenda-crm/vivenda-crm/internal/crm/clients"
	"github.com/vivenda-crm/vivenda-crm/internal/crm/estimates"
	"github.com/vivenda-crm/vivenda-crm/internal/crm/invoices"
	"github.com/vivenda-crm/vivenda-crm/internal/platform/httpx"
)

// InvoiceSource fetches invoices for rendering.
type InvoiceSource interface {
	Get(ctx context.Context, id int64) (*invoices.Invoice, error)
}

// EstimateSource fetches estimates for rendering.
type EstimateSource interface {
	Get(ctx context.Context, id int64) (*estimates.Estimate, error)
}

// ClientSource resolves client display names.
type ClientSource interface {
	Get(ctx context.Context, id int64) (*clients.Client, error)
}

// Handler serves PDF downloads for documents.
type Handler struct {
	logger        *slog.Logger
	client        *Client
	invoiceSource InvoiceSource
	estimates     EstimateSource
	clients       ClientSource
}

// NewHandler creates a report handler.
func NewHandler(logger *slog.Logger, client *Client, inv InvoiceSource, est EstimateSource, cl ClientSource) *Handler {
	return &Handler{
		logger:        logger,
		client:        client,
		invoiceSource: inv,
		estimates:     est,
		clients:       cl,
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/invoices/{id}", h.invoicePDF)
	r.Get("/estimates/{id}", h.estimatePDF)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Renderer Unavailable", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) clientName(ctx context.Context, clientID *int64) string {
	if clientID == nil {
		return ""
	}
	c, err := h.clients.Get(ctx, *clientID)
	if err != nil {
		return ""
	}
	return c.Name
}

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice id")
		return
	}
	inv, err := h.invoiceSource.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	html, err := InvoiceHTML(inv, h.clientName(r.Context(), inv.ClientID))
	if err != nil {
		h.logger.Error("build invoice html", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	h.servePDF(w, r, html, fmt.Sprintf("factura-%s.pdf", inv.Number))
}

func (h *Handler) estimatePDF(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid estimate id")
		return
	}
	est, err := h.estimates.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	html, err := EstimateHTML(est, h.clientName(r.Context(), est.ClientID))
	if err != nil {
		h.logger.Error("build estimate html", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	h.servePDF(w, r, html, fmt.Sprintf("presupuesto-%s.pdf", est.Number))
}

func (h *Handler) servePDF(w http.ResponseWriter, r *http.Request, html, filename string) {
	pdf, err := h.client.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("render pdf", slog.String("file", filename), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Renderer Failed", "")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
